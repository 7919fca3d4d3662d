package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"interview-practice-be/internal/mapper"
	"interview-practice-be/internal/repository/implementation"
	"interview-practice-be/internal/repository/specification"
	"interview-practice-be/pkg/database"
	"interview-practice-be/pkg/interview"
)

// Seeds a few archived interviews so the records endpoint has data locally.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	repo := implementation.NewInterviewRecordRepository(db)
	m := mapper.NewInterviewMapper()

	log.Println("Seeding demo interview records...")

	samples := []struct {
		sessionID string
		score     int
		duration  int
		answers   []string
		defaulted bool
	}{
		{"demo-strong", 91, 1260, []string{"I led the migration of our billing system to Go.", "We cut p99 latency by 40%."}, false},
		{"demo-average", 72, 640, []string{"I mostly work on internal tools."}, false},
		{"demo-offline", 78, 847, []string{"Sorry, my connection dropped."}, true},
	}

	created := 0
	for i, s := range samples {
		existing, err := repo.FindOne(ctx, specification.BySessionID{SessionID: s.sessionID})
		if err != nil {
			log.Fatalf("Error: lookup %s: %v", s.sessionID, err)
		}
		if existing != nil {
			log.Printf("Skip: %s already exists", s.sessionID)
			continue
		}

		completedAt := time.Now().Add(-time.Duration(i+1) * 24 * time.Hour)
		started := completedAt.Add(-time.Duration(s.duration) * time.Second)

		fb := interview.DefaultFeedback()
		fb.OverallScore = s.score
		fb.Duration = s.duration

		st := interview.InitialState()
		st.Stage = interview.StageFeedback
		st.StartedAt = &started
		st.Feedback = &fb
		st.Resume = &interview.Resume{FileName: "resume.pdf", FileSize: 48213, UploadedAt: started}
		st.Conversation = append(st.Conversation, interview.Turn{From: interview.SpeakerAI, Text: "Tell me about a project you are proud of.", Timestamp: started.UnixMilli()})
		for _, a := range s.answers {
			st.Conversation = append(st.Conversation,
				interview.Turn{From: interview.SpeakerUser, Text: a, Timestamp: started.UnixMilli()},
				interview.Turn{From: interview.SpeakerAI, Text: "Thank you. Can you elaborate?", Timestamp: started.UnixMilli()},
			)
		}
		if s.defaulted {
			st.Diagnostic = interview.FeedbackDiagnostic(nil, []string{"overallScore", "evaluation"})
		}

		if err := repo.Create(ctx, m.StateToRecord(s.sessionID, st, completedAt)); err != nil {
			log.Fatalf("Error: create %s: %v", s.sessionID, err)
		}
		created++
	}

	log.Printf("Seeding completed: %d created", created)
}
