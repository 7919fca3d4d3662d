package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"interview-practice-be/pkg/interview"
)

// Drives one interview end to end through the REST API and prints the
// transcript and feedback.

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	baseURL := flag.String("base", "http://localhost:3000/api/interview/v1", "API base URL")
	resumePath := flag.String("resume", "", "PDF or DOCX to upload; a placeholder resume is used when empty")
	answers := flag.String("answers", "I am a backend engineer with five years of Go.|I enjoy owning services end to end.", "answers separated by |")
	flag.Parse()

	c := &client{baseURL: strings.TrimRight(*baseURL, "/"), http: &http.Client{Timeout: 2 * time.Minute}}

	color.Cyan("Starting interview simulation against %s", c.baseURL)

	var created struct {
		SessionId string `json:"session_id"`
		Token     string `json:"token"`
	}
	if err := c.call("POST", "/sessions", nil, &created); err != nil {
		fail("create session", err)
	}
	c.token = created.Token
	color.Green("Session: %s", created.SessionId)

	var st interview.State
	if *resumePath != "" {
		if err := c.upload(*resumePath, &st); err != nil {
			fail("upload resume", err)
		}
	} else if err := c.call("PUT", "/session/resume", map[string]interface{}{"fileName": "simulated.pdf", "fileSize": 0}, &st); err != nil {
		fail("complete upload", err)
	}
	color.Yellow("Stage: %s", st.Stage)

	if err := c.call("POST", "/session/start", nil, &st); err != nil {
		fail("start", err)
	}
	if st.LastError != nil {
		color.Red("Start failed: %s", *st.LastError)
		os.Exit(1)
	}
	printTurns(st.Conversation, 0)

	for _, answer := range strings.Split(*answers, "|") {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			continue
		}
		seen := len(st.Conversation)
		start := time.Now()
		if err := c.call("POST", "/session/answers", map[string]string{"text": answer}, &st); err != nil {
			fail("send answer", err)
		}
		printTurns(st.Conversation, seen)
		color.HiBlack("  (%v)", time.Since(start).Round(time.Millisecond))
		if st.LastError != nil {
			color.Red("  %s", *st.LastError)
		}
	}

	if err := c.call("POST", "/session/end", nil, &st); err != nil {
		fail("end", err)
	}
	printFeedback(st)
}

func printTurns(turns []interview.Turn, from int) {
	for _, t := range turns[from:] {
		if t.From == interview.SpeakerAI {
			color.Cyan("AI:   %s", t.Text)
		} else {
			color.White("YOU:  %s", t.Text)
		}
	}
}

func printFeedback(st interview.State) {
	if st.Feedback == nil {
		color.Red("No feedback returned")
		return
	}
	fb := st.Feedback
	color.Magenta("\n=== Feedback: %d/100 (%s) ===", fb.OverallScore, interview.FormatElapsed(fb.Duration))
	fmt.Println(fb.Evaluation)
	color.Green("Strengths:")
	for _, s := range fb.Strengths {
		fmt.Println("  +", s)
	}
	color.Yellow("Weaknesses:")
	for _, s := range fb.Weaknesses {
		fmt.Println("  -", s)
	}
	color.Blue("Suggestions:")
	for i, s := range fb.Suggestions {
		fmt.Printf("  %d. %s\n", i+1, s)
	}
	if st.Diagnostic != nil {
		color.HiBlack("\n(%s)", *st.Diagnostic)
	}
}

func (c *client) call(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *client) upload(path string, out interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest("POST", c.baseURL+"/session/resume", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(raw))
	}
	if !env.Success {
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func fail(step string, err error) {
	color.Red("Failed to %s: %v", step, err)
	os.Exit(1)
}
