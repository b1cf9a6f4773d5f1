package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyMeetingName  = errors.New("meeting name cannot be empty")
	ErrNoAttendees       = errors.New("meeting needs at least one attendee")
	ErrInvalidMeetingEnd = errors.New("meeting end must be after start")
)

type MeetingAction string

const (
	ActionSchedule   MeetingAction = "schedule"
	ActionReschedule MeetingAction = "reschedule"
	ActionCancel     MeetingAction = "cancel"
)

type MeetingLocation string

const (
	LocationInPerson MeetingLocation = "in-person"
	LocationVirtual  MeetingLocation = "virtual"
)

// Meeting is the structured form of a free-text scheduling request.
type Meeting struct {
	Action    MeetingAction
	Name      string
	Start     time.Time
	End       time.Time
	Attendees []string
	Reminder  bool
	Duration  int
	Location  MeetingLocation
}

func NewMeeting(
	action MeetingAction,
	name string,
	start, end time.Time,
	attendees []string,
	reminder bool,
	duration int,
	location MeetingLocation,
) (Meeting, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Meeting{}, ErrEmptyMeetingName
	}

	if len(attendees) == 0 {
		return Meeting{}, ErrNoAttendees
	}

	if !end.After(start) {
		return Meeting{}, ErrInvalidMeetingEnd
	}

	if duration <= 0 {
		duration = int(end.Sub(start).Minutes())
	}

	return Meeting{
		Action:    action,
		Name:      name,
		Start:     start,
		End:       end,
		Attendees: append([]string(nil), attendees...),
		Reminder:  reminder,
		Duration:  duration,
		Location:  location,
	}, nil
}

func (m Meeting) IsVirtual() bool {
	return m.Location == LocationVirtual
}

// MeetingLink returns a Jitsi room link for virtual meetings and "" otherwise.
// The room name is the slugged meeting name plus the last six digits of the
// creation time in milliseconds.
func (m Meeting) MeetingLink(now time.Time) string {
	if !m.IsVirtual() {
		return ""
	}

	id := strconv.FormatInt(now.UnixMilli(), 10)
	if len(id) > 6 {
		id = id[len(id)-6:]
	}

	slug := strings.ToLower(strings.Join(strings.Fields(m.Name), "-"))

	return fmt.Sprintf("https://meet.jit.si/%s-%s", slug, id)
}
