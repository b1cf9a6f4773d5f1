package notify

import (
	"context"
	"errors"
)

//go:generate mockgen -source=sender.go -destination=sender_mock.go -package=notify

// ErrSendFailed wraps every delivery failure, timeouts included.
var ErrSendFailed = errors.New("notification send failed")

type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}
