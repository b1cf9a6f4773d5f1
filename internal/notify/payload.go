package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

// Payload is everything a reminder notification renders from.
type Payload struct {
	Recipient       string
	Task            string
	DueDate         time.Time
	Tier            domain.Tier
	Label           string
	Urgency         domain.Urgency
	Priority        domain.Priority
	HoursUntilDue   float64
	MinutesUntilDue float64
}

// BuildPayload derives the notification fields for r at tier. Time remaining
// is clamped at zero for overdue reminders.
func BuildPayload(r *domain.Reminder, tier domain.Tier, now time.Time) Payload {
	remaining := max(r.DueDate().Sub(now), 0)

	return Payload{
		Recipient:       r.UserID(),
		Task:            r.Task(),
		DueDate:         r.DueDate(),
		Tier:            tier,
		Label:           tier.Label(),
		Urgency:         tier.Urgency(),
		Priority:        r.Priority(),
		HoursUntilDue:   remaining.Hours(),
		MinutesUntilDue: remaining.Minutes(),
	}
}

func (p Payload) Subject() string {
	return "Reminder: " + p.Task
}

// TimeRemaining is the human status line shown in every rendering.
func (p Payload) TimeRemaining() string {
	if p.Tier == domain.TierOneMinute {
		return fmt.Sprintf("Due in %d minute(s) - URGENT!", int(math.Round(p.MinutesUntilDue)))
	}

	if hours := int(math.Round(p.HoursUntilDue)); hours > 0 {
		return fmt.Sprintf("Due in %d hours", hours)
	}

	return "Due now"
}

// Banner is the attention line for urgent or high-priority reminders, or "".
func (p Payload) Banner() string {
	switch {
	case p.Tier == domain.TierOneMinute:
		return "URGENT: Task due in 1 minute! Drop everything and complete this now!"
	case p.Priority == domain.PriorityHigh && p.HoursUntilDue < 2:
		return "HIGH PRIORITY TASK - Immediate attention required!"
	default:
		return ""
	}
}

func (p Payload) priorityColor() string {
	switch p.Priority {
	case domain.PriorityHigh:
		return "#ff4444"
	case domain.PriorityLow:
		return "#888888"
	default:
		return "#ff8800"
	}
}

var reminderHTML = template.Must(template.New("reminder").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Task Reminder: {{.Task}}</h2>
  <div style="background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <p><strong>{{.Label}}</strong></p>
    <p><strong>Due Date:</strong> {{.Due}}</p>
    <p><strong>Priority:</strong> <span style="color: {{.Color}};">{{.Priority}}</span></p>
    <p><strong>Status:</strong> {{.Remaining}}</p>
  </div>
  <div style="background: white; border-left: 4px solid #007cba; padding: 15px; margin: 15px 0;">
    <h3 style="margin-top: 0;">Task Details:</h3>
    <p>{{.Task}}</p>
  </div>
  {{- if .Banner}}
  <div class="banner-{{.Urgency}}" style="background: #ffcccc; border: 2px solid #ff0000; padding: 15px; border-radius: 5px; margin: 15px 0;"><strong>{{.Banner}}</strong></div>
  {{- end}}
  <p style="color: #666; font-size: 12px;">This reminder was sent by AI Executive Assistant.</p>
</div>
`))

// Render formats p as an email for its recipient. Dates are shown in loc.
func (p Payload) Render(loc *time.Location) (Message, error) {
	if loc == nil {
		loc = time.UTC
	}

	due := p.DueDate.In(loc).Format("Mon, 02 Jan 2006 15:04 MST")

	var text strings.Builder
	fmt.Fprintf(&text, "Task Reminder: %s\n\n", p.Task)
	fmt.Fprintf(&text, "%s\n", p.Label)
	fmt.Fprintf(&text, "Due Date: %s\n", due)
	fmt.Fprintf(&text, "Priority: %s\n", strings.ToUpper(string(p.Priority)))
	fmt.Fprintf(&text, "Status: %s\n", p.TimeRemaining())

	if banner := p.Banner(); banner != "" {
		fmt.Fprintf(&text, "\n%s\n", banner)
	}

	var html bytes.Buffer
	if err := reminderHTML.Execute(&html, map[string]any{
		"Task":      p.Task,
		"Label":     p.Label,
		"Due":       due,
		"Color":     template.CSS(p.priorityColor()),
		"Priority":  strings.ToUpper(string(p.Priority)),
		"Remaining": p.TimeRemaining(),
		"Banner":    p.Banner(),
		"Urgency":   string(p.Urgency),
	}); err != nil {
		return Message{}, fmt.Errorf("failed to render reminder: %w", err)
	}

	return Message{
		To:      []string{p.Recipient},
		Subject: p.Subject(),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
