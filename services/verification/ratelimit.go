package verification

import (
	"math"
	"time"

	"github.com/tech-arch1tect/stepup/services/logging"
	"go.uber.org/zap"
)

// rateWindow is the trailing period the hourly cap is computed over.
const rateWindow = time.Hour

// Decision is the limiter's verdict for a prospective send. When
// denied, RetryAfter carries the whole-second wait and WaitTime its
// formatted rendering; both are zero when the denial came from a store
// failure and no wait can be computed.
type Decision struct {
	Allowed    bool
	RetryAfter int
	WaitTime   string
}

// Limiter derives the send rate limit from verification code history:
// no stored counters, just the trailing hour of issuance timestamps.
// Two independent checks apply — the hourly cap bounds total issuance,
// and the resend delay stops rapid-fire taps from burning the cap.
type Limiter struct {
	store       *CodeStore
	maxPerHour  int
	resendDelay time.Duration
	logger      *logging.Service
}

func NewLimiter(store *CodeStore, maxPerHour int, resendDelay time.Duration, logger *logging.Service) *Limiter {
	return &Limiter{
		store:       store,
		maxPerHour:  maxPerHour,
		resendDelay: resendDelay,
		logger:      logger,
	}
}

// CheckAllowed reports whether a new code may be issued for the
// subject right now. If the store is unreachable the limiter denies:
// failing open would defeat its purpose.
func (l *Limiter) CheckAllowed(subjectID string, realm Realm) Decision {
	now := time.Now()

	issued, err := l.store.IssuedSince(subjectID, realm, now.Add(-rateWindow))
	if err != nil {
		if l.logger != nil {
			l.logger.Error("rate limit check failed, denying send",
				zap.Error(err),
				zap.String("subject_id", subjectID),
				zap.String("realm", string(realm)))
		}
		return Decision{Allowed: false}
	}

	if len(issued) >= l.maxPerHour {
		oldest := issued[len(issued)-1]
		wait := ceilSeconds(oldest.Add(rateWindow).Sub(now))
		if wait < 0 {
			wait = 0
		}
		if l.logger != nil {
			l.logger.Warn("hourly verification send cap reached",
				zap.String("subject_id", subjectID),
				zap.String("realm", string(realm)),
				zap.Int("sends_in_window", len(issued)),
				zap.Int("retry_after_seconds", wait))
		}
		return Decision{RetryAfter: wait, WaitTime: FormatWaitTime(wait)}
	}

	if len(issued) > 0 {
		elapsed := now.Sub(issued[0])
		if elapsed < l.resendDelay {
			wait := ceilSeconds(l.resendDelay - elapsed)
			return Decision{RetryAfter: wait, WaitTime: FormatWaitTime(wait)}
		}
	}

	return Decision{Allowed: true}
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
