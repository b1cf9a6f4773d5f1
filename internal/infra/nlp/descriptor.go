package nlp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kaptinlin/jsonrepair"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

// Descriptor is the JSON shape the model is asked to produce.
type Descriptor struct {
	Action    string   `json:"action" validate:"omitempty,oneof=schedule reschedule cancel"`
	Name      string   `json:"name" validate:"required"`
	Start     string   `json:"start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End       string   `json:"end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Attendees []string `json:"attendees" validate:"required,min=1,dive,email"`
	Reminder  bool     `json:"reminder"`
	Duration  int      `json:"duration" validate:"gte=0"`
	Location  string   `json:"location" validate:"omitempty,oneof=in-person virtual"`
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	fence    = regexp.MustCompile("```(?:json)?")
)

// DecodeDescriptor reads a descriptor out of raw model output. Markdown code
// fences are stripped and malformed JSON is repaired before decoding.
func DecodeDescriptor(raw string) (Descriptor, error) {
	cleaned := strings.TrimSpace(fence.ReplaceAllString(raw, ""))
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	if cleaned == "" {
		return Descriptor{}, fmt.Errorf("%w: empty response", ErrParseFailed)
	}

	var d Descriptor
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return Descriptor{}, fmt.Errorf("%w: %v", ErrParseFailed, repairErr)
		}

		if err := json.Unmarshal([]byte(repaired), &d); err != nil {
			return Descriptor{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
		}
	}

	return d, nil
}

// Meeting validates d and converts it to a domain meeting.
func (d Descriptor) Meeting() (domain.Meeting, error) {
	if err := validate.Struct(d); err != nil {
		return domain.Meeting{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	start, err := time.Parse(time.RFC3339, d.Start)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("%w: start: %v", ErrInvalidDescriptor, err)
	}

	end, err := time.Parse(time.RFC3339, d.End)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("%w: end: %v", ErrInvalidDescriptor, err)
	}

	action := domain.MeetingAction(d.Action)
	if action == "" {
		action = domain.ActionSchedule
	}

	location := domain.MeetingLocation(d.Location)
	if location == "" {
		location = domain.LocationVirtual
	}

	meeting, err := domain.NewMeeting(action, d.Name, start, end, d.Attendees, d.Reminder, d.Duration, location)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	return meeting, nil
}
