package mailer

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/pkg/interview"
)

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: smtp is not configured")

type IFeedbackMailer interface {
	SendFeedbackReport(toEmail string, state interview.State) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type feedbackMailer struct {
	dialer      sender
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

func NewFeedbackMailer(host string, port int, username, password, senderEmail, senderName string, log logger.ILogger) IFeedbackMailer {
	var d sender
	if host != "" {
		d = gomail.NewDialer(host, port, username, password)
	}
	return &feedbackMailer{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
		logger:      log,
	}
}

func (s *feedbackMailer) SendFeedbackReport(toEmail string, state interview.State) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}
	if state.Feedback == nil {
		return &interview.ValidationError{Field: "feedback", Reason: "no feedback report is available yet"}
	}

	m, err := buildFeedbackMessage(s.senderEmail, s.senderName, toEmail, state)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send feedback report", map[string]interface{}{
			"to":    toEmail,
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Feedback report sent", map[string]interface{}{"to": toEmail})
	return nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"elapsed": interview.FormatElapsed,
}).Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>Your Interview Feedback</h2>
	<h1 style="color: #4CAF50;">{{.Feedback.OverallScore}}/100</h1>
	<p>Duration: {{elapsed .Feedback.Duration}}</p>
	<p>{{.Feedback.Evaluation}}</p>
	<h3>Strengths</h3>
	<ul>{{range .Feedback.Strengths}}<li>{{.}}</li>{{end}}</ul>
	<h3>Areas to improve</h3>
	<ul>{{range .Feedback.Weaknesses}}<li>{{.}}</li>{{end}}</ul>
	<h3>Suggestions</h3>
	<ol>{{range .Feedback.Suggestions}}<li>{{.}}</li>{{end}}</ol>
	<h3>Transcript</h3>
	{{range .Conversation}}<p><b>{{if eq .From "ai"}}Interviewer{{else}}You{{end}}:</b> {{.Text}}</p>{{end}}
</div>
`))

func renderReport(state interview.State) (string, error) {
	var body strings.Builder
	if err := reportTemplate.Execute(&body, state); err != nil {
		return "", fmt.Errorf("render feedback report: %w", err)
	}
	return body.String(), nil
}

func buildFeedbackMessage(from, fromName, to string, state interview.State) (*gomail.Message, error) {
	body, err := renderReport(state)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Interview feedback: %d/100", state.Feedback.OverallScore))
	m.SetBody("text/html", body)
	return m, nil
}
