package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/stepup/testutils"
	"gorm.io/gorm"
)

func seedCode(t *testing.T, db *gorm.DB, subjectID string, realm Realm, createdAt time.Time) {
	t.Helper()
	record := &VerificationCode{
		SubjectID: subjectID,
		Realm:     realm,
		Purpose:   PurposeLogin,
		Code:      "123456",
		ExpiresAt: createdAt.Add(10 * time.Minute),
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(record).Error)
}

func TestLimiter_AllowsFreshSubject(t *testing.T) {
	db := testutils.SetupTestDB(t, &VerificationCode{})
	limiter := NewLimiter(NewCodeStore(db, nil), 5, 60*time.Second, nil)

	decision := limiter.CheckAllowed("subject-1", RealmUser)
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.RetryAfter)
}

func TestLimiter_HourlyCap(t *testing.T) {
	db := testutils.SetupTestDB(t, &VerificationCode{})
	store := NewCodeStore(db, nil)
	limiter := NewLimiter(store, 5, 60*time.Second, nil)
	now := time.Now()

	// Five sends inside the trailing hour, oldest 30 minutes ago.
	for i := 0; i < 5; i++ {
		seedCode(t, db, "subject-1", RealmUser, now.Add(-time.Duration(30-i*5)*time.Minute))
	}

	decision := limiter.CheckAllowed("subject-1", RealmUser)
	require.False(t, decision.Allowed)

	// The wait runs until the oldest send leaves the hour window.
	assert.InDelta(t, 30*60, decision.RetryAfter, 2)
	assert.Contains(t, decision.WaitTime, "دقيقة")

	t.Run("sends outside the window do not count", func(t *testing.T) {
		db := testutils.SetupTestDB(t, &VerificationCode{})
		limiter := NewLimiter(NewCodeStore(db, nil), 5, time.Nanosecond, nil)

		for i := 0; i < 5; i++ {
			seedCode(t, db, "subject-1", RealmUser, now.Add(-2*time.Hour))
		}

		decision := limiter.CheckAllowed("subject-1", RealmUser)
		assert.True(t, decision.Allowed)
	})

	t.Run("other subjects unaffected", func(t *testing.T) {
		decision := limiter.CheckAllowed("subject-2", RealmUser)
		assert.True(t, decision.Allowed)
	})

	t.Run("other realm unaffected", func(t *testing.T) {
		decision := limiter.CheckAllowed("subject-1", RealmAdmin)
		assert.True(t, decision.Allowed)
	})
}

func TestLimiter_ResendDelay(t *testing.T) {
	db := testutils.SetupTestDB(t, &VerificationCode{})
	limiter := NewLimiter(NewCodeStore(db, nil), 5, 60*time.Second, nil)

	seedCode(t, db, "subject-1", RealmUser, time.Now().Add(-10*time.Second))

	decision := limiter.CheckAllowed("subject-1", RealmUser)
	require.False(t, decision.Allowed)
	assert.InDelta(t, 50, decision.RetryAfter, 2)
	assert.Contains(t, decision.WaitTime, "ثانية")
}

func TestLimiter_AllowsAfterDelayElapsed(t *testing.T) {
	db := testutils.SetupTestDB(t, &VerificationCode{})
	limiter := NewLimiter(NewCodeStore(db, nil), 5, 60*time.Second, nil)

	seedCode(t, db, "subject-1", RealmUser, time.Now().Add(-90*time.Second))

	decision := limiter.CheckAllowed("subject-1", RealmUser)
	assert.True(t, decision.Allowed)
}

func TestLimiter_FailsClosedOnStoreError(t *testing.T) {
	db := testutils.SetupTestDB(t, &VerificationCode{})
	limiter := NewLimiter(NewCodeStore(db, nil), 5, 60*time.Second, nil)

	require.NoError(t, db.Migrator().DropTable(&VerificationCode{}))

	decision := limiter.CheckAllowed("subject-1", RealmUser)
	assert.False(t, decision.Allowed)
	assert.Zero(t, decision.RetryAfter)
	assert.Empty(t, decision.WaitTime)
}
