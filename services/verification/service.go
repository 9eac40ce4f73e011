package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/stepup/services/logging"
	"github.com/tech-arch1tect/stepup/services/mail"
	"go.uber.org/zap"
)

var (
	ErrRateLimited          = errors.New("verification sends are rate limited")
	ErrInvalidOrExpiredCode = errors.New("كود التحقق غير صحيح أو منتهي الصلاحية")
	ErrStoreUnavailable     = errors.New("verification store unavailable")
	ErrEmailDispatchFailed  = errors.New("فشل في إرسال كود التحقق عبر البريد الإلكتروني")
)

// Mailer is the outbound email capability the service depends on.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// DeviceGate answers whether the subject's current device carries a
// valid trust record. Implementations must fail closed.
type DeviceGate interface {
	IsTrusted(subjectID, realm, fingerprint string) bool
}

// SendResult is returned by SendCode so callers can render countdowns
// and retry buttons without parsing error strings.
type SendResult struct {
	Success    bool   `json:"success"`
	RetryAfter int    `json:"retry_after,omitempty"`
	WaitTime   string `json:"wait_time,omitempty"`
}

// Service orchestrates one realm's send/verify protocol: rate limiter,
// code generator, store and email dispatch.
type Service struct {
	policy  Policy
	store   *CodeStore
	limiter *Limiter
	mailer  Mailer
	gate    DeviceGate
	logger  *logging.Service
}

func NewService(policy Policy, store *CodeStore, mailer Mailer, gate DeviceGate, logger *logging.Service) *Service {
	return &Service{
		policy:  policy,
		store:   store,
		limiter: NewLimiter(store, policy.MaxPerHour, policy.ResendDelay, logger),
		mailer:  mailer,
		gate:    gate,
		logger:  logger,
	}
}

func (s *Service) Policy() Policy {
	return s.policy
}

// NeedsVerification consults the trusted-device gate. Any uncertainty
// requires step-up: a gate error, a missing gate and a missing
// fingerprint all report true.
func (s *Service) NeedsVerification(subjectID, fingerprint string) bool {
	if s.gate == nil || fingerprint == "" {
		return true
	}
	if s.gate.IsTrusted(subjectID, string(s.policy.Realm), fingerprint) {
		if s.logger != nil {
			s.logger.Debug("device trusted, skipping verification",
				zap.String("subject_id", subjectID),
				zap.String("realm", string(s.policy.Realm)))
		}
		return false
	}
	return true
}

// SendCode issues a fresh code for the subject and emails it. Prior
// unused codes for the same purpose are invalidated first, so after a
// successful send exactly one valid code exists for the
// (subject, purpose) pair.
func (s *Service) SendCode(ctx context.Context, subjectID, email string, purpose Purpose) (*SendResult, error) {
	if s.logger != nil {
		s.logger.Info("sending verification code",
			zap.String("subject_id", subjectID),
			zap.String("realm", string(s.policy.Realm)),
			zap.String("purpose", string(purpose)))
	}

	// Housekeeping; a failed sweep never blocks the send.
	if _, err := s.store.SweepExpired(); err != nil && s.logger != nil {
		s.logger.Warn("expired code sweep failed", zap.Error(err))
	}

	decision := s.limiter.CheckAllowed(subjectID, s.policy.Realm)
	if !decision.Allowed {
		return &SendResult{
			RetryAfter: decision.RetryAfter,
			WaitTime:   decision.WaitTime,
		}, ErrRateLimited
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	if err := s.store.InvalidateOutstanding(subjectID, s.policy.Realm, purpose); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to invalidate outstanding codes", zap.Error(err),
				zap.String("subject_id", subjectID))
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	record, err := s.store.Create(subjectID, s.policy.Realm, purpose, code, s.policy.CodeTTL)
	if err != nil {
		// Invalidation already landed: the subject holds zero valid
		// codes, which is the safe failure. The next send retries
		// cleanly.
		if s.logger != nil {
			s.logger.Error("failed to store verification code", zap.Error(err),
				zap.String("subject_id", subjectID))
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	msg, err := mail.VerificationEmail(mail.VerificationEmailData{
		To:         email,
		Code:       code,
		Purpose:    string(purpose),
		AdminRealm: s.policy.Realm == RealmAdmin,
		TTLMinutes: int(s.policy.CodeTTL.Minutes()),
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		// The created code stays behind and expires naturally; it is
		// harmless and the next allowed send invalidates it.
		if s.logger != nil {
			s.logger.Error("verification email dispatch failed", zap.Error(err),
				zap.String("subject_id", subjectID),
				zap.String("code_id", record.ID))
		}
		return nil, fmt.Errorf("%w: %w", ErrEmailDispatchFailed, err)
	}

	if s.logger != nil {
		s.logger.Info("verification code sent",
			zap.String("subject_id", subjectID),
			zap.String("realm", string(s.policy.Realm)),
			zap.String("purpose", string(purpose)),
			zap.Time("expires_at", record.ExpiresAt))
	}

	return &SendResult{
		Success:    true,
		RetryAfter: int(s.policy.ResendDelay.Seconds()),
	}, nil
}

// VerifyCode redeems a submitted code. A match is consumed atomically
// with the lookup result; a second attempt with the same code fails.
// Store failures are treated as an invalid code rather than an
// ambiguous success.
func (s *Service) VerifyCode(ctx context.Context, subjectID, code string, purpose Purpose) error {
	record, err := s.store.FindValid(subjectID, s.policy.Realm, code, purpose)
	if err != nil {
		if !errors.Is(err, ErrCodeNotFound) {
			if s.logger != nil {
				s.logger.Error("verification lookup failed, rejecting code", zap.Error(err),
					zap.String("subject_id", subjectID))
			}
			return ErrInvalidOrExpiredCode
		}

		s.registerFailedAttempt(subjectID, purpose)
		if s.logger != nil {
			s.logger.Warn("invalid or expired verification code submitted",
				zap.String("subject_id", subjectID),
				zap.String("realm", string(s.policy.Realm)),
				zap.String("purpose", string(purpose)))
		}
		return ErrInvalidOrExpiredCode
	}

	if err := s.store.MarkUsed(record.ID); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to consume verification code", zap.Error(err),
				zap.String("code_id", record.ID))
		}
		return ErrInvalidOrExpiredCode
	}

	if s.logger != nil {
		s.logger.Info("verification code accepted",
			zap.String("subject_id", subjectID),
			zap.String("realm", string(s.policy.Realm)),
			zap.String("purpose", string(purpose)))
	}
	return nil
}

// registerFailedAttempt charges a wrong guess against the outstanding
// code and exhausts it once the policy's bound is hit. With
// MaxAttempts at zero this is a no-op and wrong guesses are simply
// rejected, matching the historical behavior.
func (s *Service) registerFailedAttempt(subjectID string, purpose Purpose) {
	if s.policy.MaxAttempts <= 0 {
		return
	}

	outstanding, err := s.store.FindOutstanding(subjectID, s.policy.Realm, purpose)
	if err != nil {
		return
	}

	attempts, err := s.store.RecordAttempt(outstanding.ID)
	if err != nil {
		return
	}

	if attempts >= s.policy.MaxAttempts {
		if err := s.store.MarkUsed(outstanding.ID); err == nil && s.logger != nil {
			s.logger.Warn("verification code exhausted by failed attempts",
				zap.String("subject_id", subjectID),
				zap.String("code_id", outstanding.ID),
				zap.Int("attempts", attempts))
		}
	}
}

// Sweep removes expired codes; exposed for the background janitor.
func (s *Service) Sweep() (int64, error) {
	return s.store.SweepExpired()
}
