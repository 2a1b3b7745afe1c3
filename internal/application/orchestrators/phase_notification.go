package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sagra/internal/adapters/email"
)

// PhaseNotificationPayload is the outbox payload for a phase notification.
type PhaseNotificationPayload struct {
	To                []string `json:"to"`
	AthleteName       string   `json:"athlete_name"`
	Phase             string   `json:"phase"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	SurgeryDate       string   `json:"surgery_date"`
	DischargeForecast string   `json:"discharge_forecast"`
	AllowedActivities string   `json:"allowed_activities,omitempty"`
	Treatments        []string `json:"treatments,omitempty"`
}

// MarkdownRenderer turns markdown into HTML.
type MarkdownRenderer interface {
	Render(source string) string
}

// PhaseNotificationExecutor emails staff that an athlete entered a phase.
type PhaseNotificationExecutor struct {
	Sender   email.Sender
	Renderer MarkdownRenderer
	From     string
	ReplyTo  string
}

// Execute sends the notification described by payload.
// PRE: payload is a JSON PhaseNotificationPayload
// POST: Email accepted by the sender; returns its message ID
func (e *PhaseNotificationExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p PhaseNotificationPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}

	res, err := e.Sender.Send(ctx, email.SendRequest{
		To:      p.To,
		From:    e.From,
		ReplyTo: e.ReplyTo,
		Subject: fmt.Sprintf("SAGRA: %s iniciou %s", p.AthleteName, p.Phase),
		HTML:    e.Renderer.Render(PhaseNotificationMarkdown(p)),
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// PhaseNotificationMarkdown builds the email body.
func PhaseNotificationMarkdown(p PhaseNotificationPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s: %s\n\n", p.AthleteName, p.Phase)
	fmt.Fprintf(&b, "- **Período:** %s a %s\n", displayDate(p.StartDate), displayDate(p.EndDate))
	fmt.Fprintf(&b, "- **Cirurgia:** %s\n", displayDate(p.SurgeryDate))
	fmt.Fprintf(&b, "- **Previsão de alta:** %s\n", displayDate(p.DischargeForecast))
	if p.AllowedActivities != "" {
		fmt.Fprintf(&b, "\n### Atividades liberadas\n\n%s\n", p.AllowedActivities)
	}
	if len(p.Treatments) > 0 {
		b.WriteString("\n### Tratamentos\n\n")
		for _, t := range p.Treatments {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return b.String()
}

// displayDate converts YYYY-MM-DD to dd/mm/yyyy, leaving other text as is.
func displayDate(s string) string {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
