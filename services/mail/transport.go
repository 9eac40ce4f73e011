package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Transport is one way of getting a Message out. The Service walks its
// transports in priority order until one succeeds.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// RelayTransport posts messages to the local HTTP relay, the primary
// dispatch path in every environment.
type RelayTransport struct {
	url      string
	from     string
	fromName string
	client   *http.Client
}

type relayRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	From     string `json:"from"`
	FromName string `json:"fromName"`
}

type relayResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
}

func NewRelayTransport(url, from, fromName string, timeout time.Duration) *RelayTransport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RelayTransport{
		url:      url,
		from:     from,
		fromName: fromName,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *RelayTransport) Name() string {
	return "relay"
}

func (t *RelayTransport) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(relayRequest{
		To:       msg.To,
		Subject:  msg.Subject,
		HTML:     msg.HTML,
		Text:     msg.Text,
		From:     t.from,
		FromName: t.fromName,
	})
	if err != nil {
		return fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	var result relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode relay response: %w", err)
	}
	if !result.Success {
		if result.Error != "" {
			return fmt.Errorf("relay rejected message: %s", result.Error)
		}
		return fmt.Errorf("relay rejected message")
	}
	return nil
}

// SMTPTransport delivers directly over SMTP via go-mail. Used as the
// fallback when the relay is down or rejects the message.
type SMTPTransport struct {
	client   *gomail.Client
	from     string
	fromName string
}

type SMTPOptions struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Encryption string
}

func NewSMTPTransport(opts SMTPOptions, from, fromName string) (*SMTPTransport, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}

	clientOpts := []gomail.Option{
		gomail.WithPort(opts.Port),
	}

	if opts.Username != "" {
		clientOpts = append(clientOpts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(opts.Username))
	}
	if opts.Password != "" {
		clientOpts = append(clientOpts, gomail.WithPassword(opts.Password))
	}

	switch opts.Encryption {
	case "tls", "starttls":
		clientOpts = append(clientOpts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	case "ssl":
		clientOpts = append(clientOpts, gomail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, gomail.WithTLSPortPolicy(gomail.NoTLS))
	default:
		clientOpts = append(clientOpts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPTransport{
		client:   client,
		from:     from,
		fromName: fromName,
	}, nil
}

func (t *SMTPTransport) Name() string {
	return "smtp"
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	message := gomail.NewMsg()

	fromAddr := t.from
	if t.fromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", t.fromName, t.from)
	}
	if err := message.From(fromAddr); err != nil {
		return fmt.Errorf("failed to set FROM address: %w", err)
	}
	if err := message.To(msg.To); err != nil {
		return fmt.Errorf("failed to set TO address: %w", err)
	}

	message.Subject(msg.Subject)
	message.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		message.AddAlternativeString(gomail.TypeTextPlain, msg.Text)
	}

	if err := t.client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("SMTP send failed: %w", err)
	}
	return nil
}
