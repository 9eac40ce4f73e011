package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type classifies a notification row and selects its email wording.
type Type string

const (
	TypeProfileView Type = "profile_view"
	TypeLike        Type = "like"
	TypeMessage     Type = "message"
	TypeMatch       Type = "match"
	TypeSystem      Type = "system"
	TypeLogin       Type = "login"
)

// Notification is one pending or delivered notification email. Rows
// are written by the main application; the watcher only reads them and
// stamps EmailedAt.
type Notification struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	RecipientEmail string     `json:"recipient_email" gorm:"size:255;not null"`
	RecipientName  string     `json:"recipient_name" gorm:"size:255"`
	Type           Type       `json:"type" gorm:"size:32;index;not null"`
	Title          string     `json:"title" gorm:"size:255"`
	Body           string     `json:"body" gorm:"type:text"`
	ActorName      string     `json:"actor_name" gorm:"size:255"`

	// Login alert context, empty for other types.
	Realm       string `json:"realm,omitempty" gorm:"size:10"`
	IPAddress   string `json:"ip_address,omitempty" gorm:"size:64"`
	UserAgent   string `json:"user_agent,omitempty" gorm:"size:512"`
	LoginMethod string `json:"login_method,omitempty" gorm:"size:32"`
	Privileged  bool   `json:"privileged,omitempty"`

	EmailedAt *time.Time `json:"emailed_at,omitempty" gorm:"index"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
