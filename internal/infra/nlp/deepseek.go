package nlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/domain"
)

const (
	DefaultModel = "deepseek-chat"

	maxTokens   = 500
	temperature = float32(0.3)
)

// completeFunc sends one system and one user message and returns the reply text.
type completeFunc func(ctx context.Context, system, user string) (string, error)

type DeepSeekConfig struct {
	APIKey   string
	Model    string
	Location *time.Location
}

var _ Parser = (*DeepSeekParser)(nil)

// DeepSeekParser extracts meetings with the DeepSeek chat completions API.
type DeepSeekParser struct {
	complete completeFunc
	location *time.Location
}

func NewDeepSeekParser(cfg DeepSeekConfig) (*DeepSeekParser, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("DeepSeek API key is required")
	}

	client, err := deepseek.NewClient(cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create DeepSeek client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temp := temperature

	complete := func(ctx context.Context, system, user string) (string, error) {
		resp, err := client.CallChatCompletionsChat(ctx, &request.ChatCompletionsRequest{
			Model: model,
			Messages: []*request.Message{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			MaxTokens:   maxTokens,
			Temperature: &temp,
			Stream:      false,
		})
		if err != nil {
			return "", fmt.Errorf("DeepSeek API request failed: %w", err)
		}

		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%w: no choices in response", ErrParseFailed)
		}

		return resp.Choices[0].Message.Content, nil
	}

	return newDeepSeekParser(complete, cfg.Location), nil
}

func newDeepSeekParser(complete completeFunc, location *time.Location) *DeepSeekParser {
	if location == nil {
		location = time.UTC
	}

	return &DeepSeekParser{
		complete: complete,
		location: location,
	}
}

func (p *DeepSeekParser) Parse(ctx context.Context, text string, now time.Time) (domain.Meeting, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Meeting{}, fmt.Errorf("%w: empty request text", ErrInvalidDescriptor)
	}

	raw, err := p.complete(ctx, systemPrompt(now.In(p.location), p.location), text)
	if err != nil {
		slog.ErrorContext(ctx, "text understanding request failed",
			"event", "nlp.parse.fail",
			"error", err,
		)

		return domain.Meeting{}, err
	}

	descriptor, err := DecodeDescriptor(raw)
	if err != nil {
		slog.WarnContext(ctx, "unreadable text understanding response",
			"event", "nlp.parse.invalid",
			"raw", raw,
			"error", err,
		)

		return domain.Meeting{}, err
	}

	meeting, err := descriptor.Meeting()
	if err != nil {
		slog.WarnContext(ctx, "invalid meeting details",
			"event", "nlp.parse.invalid",
			"error", err,
		)

		return domain.Meeting{}, err
	}

	slog.InfoContext(ctx, "meeting details parsed",
		"event", "nlp.parse",
		"name", meeting.Name,
		"start", meeting.Start,
		"attendees", len(meeting.Attendees),
	)

	return meeting, nil
}

func systemPrompt(now time.Time, loc *time.Location) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an executive assistant AI.\n\n")
	fmt.Fprintf(&b, "Current context:\n")
	fmt.Fprintf(&b, "- Today's date: %s\n", now.Format(time.DateOnly))
	fmt.Fprintf(&b, "- Current time: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "- User timezone: %s\n\n", loc.String())
	fmt.Fprintf(&b, "Time parsing rules:\n")
	fmt.Fprintf(&b, "- A time such as \"2:30 PM\" means exactly 2:30 PM in %s. Do not shift it.\n", loc.String())
	fmt.Fprintf(&b, "- Use ISO 8601 with the %s offset and the current year %d.\n\n", loc.String(), now.Year())
	fmt.Fprintf(&b, "Extract meeting details from the user's message and reply with JSON only, using these fields:\n")
	fmt.Fprintf(&b, "- action: \"schedule\", \"reschedule\" or \"cancel\"\n")
	fmt.Fprintf(&b, "- name: meeting name\n")
	fmt.Fprintf(&b, "- start: ISO 8601 datetime with offset\n")
	fmt.Fprintf(&b, "- end: ISO 8601 datetime with offset\n")
	fmt.Fprintf(&b, "- attendees: array of email addresses\n")
	fmt.Fprintf(&b, "- reminder: true if the user asked to be reminded\n")
	fmt.Fprintf(&b, "- duration: meeting duration in minutes\n")
	fmt.Fprintf(&b, "- location: \"in-person\" or \"virtual\"\n")

	return b.String()
}
