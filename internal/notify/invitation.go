package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

var invitationHTML = template.Must(template.New("invitation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Meeting Invitation: {{.Name}}</h2>
  <div style="background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <p><strong>Start:</strong> {{.Start}}</p>
    <p><strong>End:</strong> {{.End}}</p>
    <p><strong>Duration:</strong> {{.Duration}} minutes</p>
    <p><strong>Location:</strong> {{.Location}}</p>
    {{- if .Link}}
    <p><strong>Join:</strong> <a href="{{.Link}}">{{.Link}}</a></p>
    {{- end}}
    <p><strong>Attendees:</strong> {{.Attendees}}</p>
  </div>
  <p style="color: #666; font-size: 12px;">This invitation was sent by AI Executive Assistant.</p>
</div>
`))

// Invitation renders the confirmation sent to every attendee of a newly
// scheduled meeting. link may be empty.
func Invitation(m domain.Meeting, link string, loc *time.Location) (Message, error) {
	if loc == nil {
		loc = time.UTC
	}

	start := m.Start.In(loc).Format("Mon, 02 Jan 2006 15:04 MST")
	end := m.End.In(loc).Format("Mon, 02 Jan 2006 15:04 MST")
	attendees := strings.Join(m.Attendees, ", ")

	var text strings.Builder
	fmt.Fprintf(&text, "Meeting Invitation: %s\n\n", m.Name)
	fmt.Fprintf(&text, "Start: %s\n", start)
	fmt.Fprintf(&text, "End: %s\n", end)
	fmt.Fprintf(&text, "Duration: %d minutes\n", m.Duration)
	fmt.Fprintf(&text, "Location: %s\n", m.Location)

	if link != "" {
		fmt.Fprintf(&text, "Join: %s\n", link)
	}

	fmt.Fprintf(&text, "Attendees: %s\n", attendees)

	var html bytes.Buffer
	if err := invitationHTML.Execute(&html, map[string]any{
		"Name":      m.Name,
		"Start":     start,
		"End":       end,
		"Duration":  m.Duration,
		"Location":  string(m.Location),
		"Link":      link,
		"Attendees": attendees,
	}); err != nil {
		return Message{}, fmt.Errorf("failed to render invitation: %w", err)
	}

	return Message{
		To:      append([]string(nil), m.Attendees...),
		Subject: "Meeting Invitation: " + m.Name,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
