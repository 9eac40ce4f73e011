package session

import (
	"context"
	"encoding/gob"
	"time"
)

const challengeKey = "verification_challenge"

func init() {
	gob.Register(Challenge{})
}

// Challenge is the pending verification context written by the send
// handler and required by the verify handler. A verify call with no
// challenge in the session is rejected before any store access.
type Challenge struct {
	SubjectID   string
	Realm       string
	Purpose     string
	Email       string
	Fingerprint string
	IssuedAt    time.Time
}

// PutChallenge stores the pending challenge, replacing any prior one.
func (m *Manager) PutChallenge(ctx context.Context, ch Challenge) {
	if ch.IssuedAt.IsZero() {
		ch.IssuedAt = time.Now()
	}
	m.Put(ctx, challengeKey, ch)
}

// Challenge returns the pending challenge, or ok=false when none is
// stored.
func (m *Manager) Challenge(ctx context.Context) (Challenge, bool) {
	v := m.Get(ctx, challengeKey)
	ch, ok := v.(Challenge)
	if !ok || ch.SubjectID == "" {
		return Challenge{}, false
	}
	return ch, true
}

// ClearChallenge drops the pending challenge after a completed or
// abandoned verification.
func (m *Manager) ClearChallenge(ctx context.Context) {
	m.Remove(ctx, challengeKey)
}
