package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/regaloamor/storefront-backend/pkg/config"
	"github.com/regaloamor/storefront-backend/pkg/logger"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
}

// Sender delivers rendered emails. Delivery is always best-effort for the
// callers: a failed send never rolls back the action that triggered it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const sendEndpoint = "https://api.sendgrid.com/v3/mail/send"

// HTTPSender pushes mail through the transactional provider's REST API.
type HTTPSender struct {
	httpClient *http.Client
	apiKey     string
	from       string
	fromName   string
}

// NewHTTPSender builds a sender from the mail configuration.
func NewHTTPSender(cfg config.MailConfig) (*HTTPSender, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("mail api key is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail from address is required")
	}
	return &HTTPSender{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		from:       cfg.From,
		fromName:   cfg.FromName,
	}, nil
}

type sendPayload struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers one message. Non-2xx responses are returned as errors so the
// caller can log them.
func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("recipient address is required")
	}

	payload := sendPayload{
		Personalizations: []personalization{{To: []emailAddress{{Email: msg.To, Name: msg.ToName}}}},
		From:             emailAddress{Email: s.from, Name: s.fromName},
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/html", Value: msg.HTMLBody}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned %d", resp.StatusCode)
	}
	return nil
}

// NoopSender is used in dev environments without mail credentials.
type NoopSender struct {
	Logger *logger.Logger
}

// Send logs the would-be delivery and succeeds.
func (s NoopSender) Send(ctx context.Context, msg Message) error {
	if s.Logger != nil {
		ctx = s.Logger.WithFields(ctx, map[string]any{"to": msg.To, "subject": msg.Subject})
		s.Logger.Info(ctx, "mail delivery skipped (no provider configured)")
	}
	return nil
}
