package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"interview-practice-be/internal/config"
	"interview-practice-be/pkg/events"
	pktNats "interview-practice-be/pkg/nats"
)

// Tails interview domain events from JetStream.
func main() {
	durable := flag.String("durable", "interview-events-tail", "durable consumer name")
	subject := flag.String("subject", pktNats.Subject("interview.>"), "subject filter")
	flag.Parse()

	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, *subject, *durable, func(_ context.Context, ev events.Event) error {
		data := ev.Payload()
		ts := ev.Timestamp().Format(time.RFC3339)
		switch ev.EventType() {
		case events.TypeInterviewStarted:
			color.Cyan("%s started   session=%v", ts, data["session_id"])
		case events.TypeInterviewCompleted:
			c := color.New(color.FgGreen)
			if used, _ := data["used_defaults"].(bool); used {
				c = color.New(color.FgYellow)
			}
			c.Printf("%s completed session=%v score=%v duration=%vs turns=%v\n",
				ts, data["session_id"], data["overall_score"], data["duration_seconds"], data["turns"])
		default:
			color.White("%s %s %v", ts, ev.EventType(), data)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	color.HiBlack("Listening on %s (Ctrl+C to stop)", *subject)
	<-ctx.Done()
}
