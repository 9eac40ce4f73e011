package verification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Realm separates the end-user and admin code namespaces. A code
// issued in one realm is never visible to lookups in the other.
type Realm string

const (
	RealmUser  Realm = "user"
	RealmAdmin Realm = "admin"
)

// Purpose scopes a code to the flow it was issued for.
type Purpose string

const (
	PurposeLogin         Purpose = "login"
	PurposeDeviceTrust   Purpose = "device_trust"
	PurposePasswordReset Purpose = "password_reset"
)

type VerificationCode struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	SubjectID string     `json:"subject_id" gorm:"size:36;index:idx_subject_realm_purpose,priority:1;not null"`
	Realm     Realm      `json:"realm" gorm:"size:10;index:idx_subject_realm_purpose,priority:2;not null"`
	Purpose   Purpose    `json:"purpose" gorm:"size:20;index:idx_subject_realm_purpose,priority:3;not null"`
	Code      string     `json:"-" gorm:"size:6;index;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	Used      bool       `json:"used" gorm:"not null;default:false"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	Attempts  int        `json:"attempts" gorm:"not null;default:0"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

func (c *VerificationCode) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
