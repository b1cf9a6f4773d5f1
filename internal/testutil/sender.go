package testutil

import (
	"context"
	"sync"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/notify"
)

// RecordingSender is a notify.Sender that keeps every message it accepts.
// When Fail is set, it decides per message whether the send errors.
type RecordingSender struct {
	mu       sync.Mutex
	messages []notify.Message

	Fail func(msg notify.Message) error
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

func (s *RecordingSender) Send(_ context.Context, msg notify.Message) error {
	if s.Fail != nil {
		if err := s.Fail(msg); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)

	return nil
}

func (s *RecordingSender) Messages() []notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]notify.Message(nil), s.messages...)
}

// Subjects lists the subject of every recorded message, in send order.
func (s *RecordingSender) Subjects() []string {
	msgs := s.Messages()

	subjects := make([]string, len(msgs))
	for i, m := range msgs {
		subjects[i] = m.Subject
	}

	return subjects
}
