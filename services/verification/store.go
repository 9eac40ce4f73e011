package verification

import (
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/stepup/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrCodeNotFound = errors.New("no matching verification code")

// CodeStore owns all reads and writes of verification_codes rows.
type CodeStore struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewCodeStore(db *gorm.DB, logger *logging.Service) *CodeStore {
	return &CodeStore{db: db, logger: logger}
}

// InvalidateOutstanding marks every unused code for the
// (subject, realm, purpose) triple as used. Idempotent; a send calls
// this immediately before Create so at most one valid code exists per
// triple at any time.
func (s *CodeStore) InvalidateOutstanding(subjectID string, realm Realm, purpose Purpose) error {
	now := time.Now()
	result := s.db.Model(&VerificationCode{}).
		Where("subject_id = ? AND realm = ? AND purpose = ? AND used = ?", subjectID, realm, purpose, false).
		Updates(map[string]any{"used": true, "used_at": now})
	if result.Error != nil {
		return fmt.Errorf("failed to invalidate outstanding codes: %w", result.Error)
	}

	if result.RowsAffected > 0 && s.logger != nil {
		s.logger.Debug("invalidated outstanding verification codes",
			zap.String("subject_id", subjectID),
			zap.String("realm", string(realm)),
			zap.String("purpose", string(purpose)),
			zap.Int64("codes_invalidated", result.RowsAffected))
	}
	return nil
}

func (s *CodeStore) Create(subjectID string, realm Realm, purpose Purpose, code string, ttl time.Duration) (*VerificationCode, error) {
	now := time.Now()
	record := &VerificationCode{
		SubjectID: subjectID,
		Realm:     realm,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(ttl),
		Used:      false,
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create verification code: %w", err)
	}
	return record, nil
}

// FindValid returns the newest unused, unexpired code matching the
// subject, realm, exact code and purpose, or ErrCodeNotFound.
func (s *CodeStore) FindValid(subjectID string, realm Realm, code string, purpose Purpose) (*VerificationCode, error) {
	var record VerificationCode
	err := s.db.
		Where("subject_id = ? AND realm = ? AND code = ? AND purpose = ? AND used = ? AND expires_at > ?",
			subjectID, realm, code, purpose, false, time.Now()).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up verification code: %w", err)
	}
	return &record, nil
}

// FindOutstanding returns the newest unused, unexpired code for the
// (subject, realm, purpose) triple regardless of code value. Used by
// the attempt counter.
func (s *CodeStore) FindOutstanding(subjectID string, realm Realm, purpose Purpose) (*VerificationCode, error) {
	var record VerificationCode
	err := s.db.
		Where("subject_id = ? AND realm = ? AND purpose = ? AND used = ? AND expires_at > ?",
			subjectID, realm, purpose, false, time.Now()).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up outstanding code: %w", err)
	}
	return &record, nil
}

// MarkUsed flips used to true. The transition is one-way; calling it
// on an already-used code is a no-op.
func (s *CodeStore) MarkUsed(id string) error {
	now := time.Now()
	result := s.db.Model(&VerificationCode{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]any{"used": true, "used_at": now})
	if result.Error != nil {
		return fmt.Errorf("failed to mark verification code as used: %w", result.Error)
	}
	return nil
}

// RecordAttempt increments the wrong-guess counter and returns the new
// total.
func (s *CodeStore) RecordAttempt(id string) (int, error) {
	if err := s.db.Model(&VerificationCode{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
		return 0, fmt.Errorf("failed to record verification attempt: %w", err)
	}

	var record VerificationCode
	if err := s.db.Select("attempts").Where("id = ?", id).First(&record).Error; err != nil {
		return 0, fmt.Errorf("failed to read verification attempts: %w", err)
	}
	return record.Attempts, nil
}

// SweepExpired deletes rows past their expiry. Housekeeping only;
// FindValid never matches expired rows so correctness does not depend
// on this running.
func (s *CodeStore) SweepExpired() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&VerificationCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired verification codes: %w", result.Error)
	}

	if result.RowsAffected > 0 && s.logger != nil {
		s.logger.Info("swept expired verification codes",
			zap.Int64("codes_removed", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// IssuedSince returns creation timestamps of every code issued to the
// subject within the realm after the cutoff, newest first. Purpose is
// deliberately ignored: the rate limit window spans all of a
// subject's sends.
func (s *CodeStore) IssuedSince(subjectID string, realm Realm, since time.Time) ([]time.Time, error) {
	var timestamps []time.Time
	err := s.db.Model(&VerificationCode{}).
		Where("subject_id = ? AND realm = ? AND created_at >= ?", subjectID, realm, since).
		Order("created_at DESC").
		Pluck("created_at", &timestamps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load issuance history: %w", err)
	}
	return timestamps, nil
}
