package testutils

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tech-arch1tect/stepup/services/mail"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// CapturingMailer records every message it is asked to deliver and
// optionally fails each send, for exercising dispatch-failure paths.
// Safe for use from watcher goroutines.
type CapturingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func NewCapturingMailer() *CapturingMailer {
	return &CapturingMailer{}
}

func (c *CapturingMailer) Send(ctx context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}

// Fail makes every subsequent Send return err; nil heals the mailer.
func (c *CapturingMailer) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *CapturingMailer) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *CapturingMailer) Message(i int) mail.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages[i]
}

// StaticGate is a trusted-device gate with a fixed answer.
type StaticGate struct {
	Trusted bool
}

func (g StaticGate) IsTrusted(subjectID, realm, fingerprint string) bool {
	return g.Trusted
}
