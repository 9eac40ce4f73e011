package trusteddevice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrustedDevice records one device a subject has verified from. A
// matching unexpired row lets that device skip code verification on
// its next login.
type TrustedDevice struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	SubjectID   string    `json:"subject_id" gorm:"size:36;uniqueIndex:idx_subject_realm_fingerprint,priority:1;not null"`
	Realm       string    `json:"realm" gorm:"size:10;uniqueIndex:idx_subject_realm_fingerprint,priority:2;not null"`
	Fingerprint string    `json:"-" gorm:"size:128;uniqueIndex:idx_subject_realm_fingerprint,priority:3;not null"`
	Label       string    `json:"label" gorm:"size:255"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TrustedDevice) TableName() string {
	return "trusted_devices"
}

func (d *TrustedDevice) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
