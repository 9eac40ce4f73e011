package trusteddevice

import (
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrDeviceNotFound = errors.New("trusted device not found")

// Service manages device trust records. Trust is an optimization only:
// when anything here errors the caller falls back to requiring a
// verification code.
type Service struct {
	db      *gorm.DB
	enabled bool
	ttl     time.Duration
	logger  *logging.Service
}

func NewService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	ttl := cfg.TrustedDevice.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		db:      db,
		enabled: cfg.TrustedDevice.Enabled,
		ttl:     ttl,
		logger:  logger,
	}
}

// IsTrusted reports whether the fingerprint holds an unexpired trust
// record for the subject in the given realm. Trust never crosses
// realms: a device trusted as a user stays untrusted for the admin
// flow. Disabled trust, a lookup error and a missing row all answer
// false.
func (s *Service) IsTrusted(subjectID, realm, fingerprint string) bool {
	if !s.enabled || subjectID == "" || realm == "" || fingerprint == "" {
		return false
	}

	var device TrustedDevice
	err := s.db.
		Where("subject_id = ? AND realm = ? AND fingerprint = ? AND expires_at > ?", subjectID, realm, fingerprint, time.Now()).
		First(&device).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && s.logger != nil {
			s.logger.Error("trusted device lookup failed, treating as untrusted",
				zap.Error(err),
				zap.String("subject_id", subjectID),
				zap.String("realm", realm))
		}
		return false
	}

	// Refresh last-seen; failures here do not affect the verdict.
	now := time.Now()
	if err := s.db.Model(&device).UpdateColumn("last_seen_at", now).Error; err != nil && s.logger != nil {
		s.logger.Warn("failed to refresh trusted device last seen", zap.Error(err))
	}
	return true
}

// Trust records the device for the subject, extending the expiry if a
// record already exists for the fingerprint.
func (s *Service) Trust(subjectID, realm, fingerprint, label string) (*TrustedDevice, error) {
	if !s.enabled {
		return nil, fmt.Errorf("device trust is disabled")
	}
	if subjectID == "" || fingerprint == "" {
		return nil, fmt.Errorf("subject and fingerprint are required to trust a device")
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)

	var device TrustedDevice
	err := s.db.
		Where("subject_id = ? AND realm = ? AND fingerprint = ?", subjectID, realm, fingerprint).
		First(&device).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"expires_at":   expiresAt,
			"last_seen_at": now,
		}
		if label != "" {
			updates["label"] = label
		}
		if err := s.db.Model(&device).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to extend device trust: %w", err)
		}
		device.ExpiresAt = expiresAt
		device.LastSeenAt = now
		if label != "" {
			device.Label = label
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		device = TrustedDevice{
			SubjectID:   subjectID,
			Realm:       realm,
			Fingerprint: fingerprint,
			Label:       label,
			LastSeenAt:  now,
			ExpiresAt:   expiresAt,
		}
		if err := s.db.Create(&device).Error; err != nil {
			return nil, fmt.Errorf("failed to record device trust: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up device trust: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("device trusted",
			zap.String("subject_id", subjectID),
			zap.String("realm", realm),
			zap.String("device_id", device.ID),
			zap.Time("expires_at", expiresAt))
	}
	return &device, nil
}

// Revoke removes one trust record by ID, scoped to the subject and
// realm so a caller cannot revoke another subject's devices or reach
// across realms.
func (s *Service) Revoke(subjectID, realm, deviceID string) error {
	result := s.db.
		Where("id = ? AND subject_id = ? AND realm = ?", deviceID, subjectID, realm).
		Delete(&TrustedDevice{})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke device trust: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// RevokeAll drops every trust record for the subject within the realm,
// used after a password reset or suspected compromise.
func (s *Service) RevokeAll(subjectID, realm string) (int64, error) {
	result := s.db.Where("subject_id = ? AND realm = ?", subjectID, realm).Delete(&TrustedDevice{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke device trust: %w", result.Error)
	}

	if result.RowsAffected > 0 && s.logger != nil {
		s.logger.Info("revoked all trusted devices",
			zap.String("subject_id", subjectID),
			zap.String("realm", realm),
			zap.Int64("devices_revoked", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// ListDevices returns the subject's unexpired trust records in the
// realm, newest first.
func (s *Service) ListDevices(subjectID, realm string) ([]TrustedDevice, error) {
	var devices []TrustedDevice
	err := s.db.
		Where("subject_id = ? AND realm = ? AND expires_at > ?", subjectID, realm, time.Now()).
		Order("last_seen_at DESC").
		Find(&devices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trusted devices: %w", err)
	}
	return devices, nil
}

// CleanupExpired deletes expired trust records.
func (s *Service) CleanupExpired() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&TrustedDevice{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clean up expired device trust: %w", result.Error)
	}
	return result.RowsAffected, nil
}
