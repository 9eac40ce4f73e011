package trusteddevice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/stepup/testutils"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db := testutils.SetupTestDB(t, &TrustedDevice{})
	return NewService(db, testutils.GetTestConfig(), nil), db
}

func TestService_TrustAndIsTrusted(t *testing.T) {
	svc, _ := setupService(t)

	device, err := svc.Trust("subject-1", "user", "fp-abc", "Chrome on Windows")
	require.NoError(t, err)
	assert.NotEmpty(t, device.ID)
	assert.Equal(t, "Chrome on Windows", device.Label)

	assert.True(t, svc.IsTrusted("subject-1", "user", "fp-abc"))

	t.Run("other fingerprint untrusted", func(t *testing.T) {
		assert.False(t, svc.IsTrusted("subject-1", "user", "fp-other"))
	})

	t.Run("other subject untrusted", func(t *testing.T) {
		assert.False(t, svc.IsTrusted("subject-2", "user", "fp-abc"))
	})

	t.Run("other realm untrusted", func(t *testing.T) {
		assert.False(t, svc.IsTrusted("subject-1", "admin", "fp-abc"))
	})

	t.Run("empty inputs untrusted", func(t *testing.T) {
		assert.False(t, svc.IsTrusted("", "user", "fp-abc"))
		assert.False(t, svc.IsTrusted("subject-1", "", "fp-abc"))
		assert.False(t, svc.IsTrusted("subject-1", "user", ""))
	})
}

func TestService_TrustIsPerRealm(t *testing.T) {
	svc, db := setupService(t)

	userDevice, err := svc.Trust("subject-1", "user", "fp-abc", "")
	require.NoError(t, err)
	adminDevice, err := svc.Trust("subject-1", "admin", "fp-abc", "")
	require.NoError(t, err)
	assert.NotEqual(t, userDevice.ID, adminDevice.ID, "each realm keeps its own record")

	var count int64
	require.NoError(t, db.Model(&TrustedDevice{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	assert.True(t, svc.IsTrusted("subject-1", "user", "fp-abc"))
	assert.True(t, svc.IsTrusted("subject-1", "admin", "fp-abc"))

	require.NoError(t, svc.Revoke("subject-1", "admin", adminDevice.ID))
	assert.False(t, svc.IsTrusted("subject-1", "admin", "fp-abc"))
	assert.True(t, svc.IsTrusted("subject-1", "user", "fp-abc"), "revoking the admin record must leave user trust intact")
}

func TestService_TrustExtendsExisting(t *testing.T) {
	svc, db := setupService(t)

	first, err := svc.Trust("subject-1", "user", "fp-abc", "")
	require.NoError(t, err)

	second, err := svc.Trust("subject-1", "user", "fp-abc", "Named later")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-trusting must not duplicate the record")
	assert.Equal(t, "Named later", second.Label)

	var count int64
	require.NoError(t, db.Model(&TrustedDevice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestService_ExpiredTrustIgnored(t *testing.T) {
	svc, db := setupService(t)

	device, err := svc.Trust("subject-1", "user", "fp-abc", "")
	require.NoError(t, err)

	require.NoError(t, db.Model(&TrustedDevice{}).
		Where("id = ?", device.ID).
		UpdateColumn("expires_at", time.Now().Add(-time.Minute)).Error)

	assert.False(t, svc.IsTrusted("subject-1", "user", "fp-abc"))
}

func TestService_FailsClosedOnStoreError(t *testing.T) {
	svc, db := setupService(t)

	_, err := svc.Trust("subject-1", "user", "fp-abc", "")
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(&TrustedDevice{}))

	assert.False(t, svc.IsTrusted("subject-1", "user", "fp-abc"))
}

func TestService_DisabledTrust(t *testing.T) {
	db := testutils.SetupTestDB(t, &TrustedDevice{})
	cfg := testutils.GetTestConfig()
	cfg.TrustedDevice.Enabled = false
	svc := NewService(db, cfg, nil)

	_, err := svc.Trust("subject-1", "user", "fp-abc", "")
	assert.Error(t, err)
	assert.False(t, svc.IsTrusted("subject-1", "user", "fp-abc"))
}

func TestService_Revoke(t *testing.T) {
	svc, _ := setupService(t)

	device, err := svc.Trust("subject-1", "user", "fp-abc", "")
	require.NoError(t, err)

	t.Run("wrong subject cannot revoke", func(t *testing.T) {
		assert.ErrorIs(t, svc.Revoke("subject-2", "user", device.ID), ErrDeviceNotFound)
		assert.True(t, svc.IsTrusted("subject-1", "user", "fp-abc"))
	})

	t.Run("wrong realm cannot revoke", func(t *testing.T) {
		assert.ErrorIs(t, svc.Revoke("subject-1", "admin", device.ID), ErrDeviceNotFound)
		assert.True(t, svc.IsTrusted("subject-1", "user", "fp-abc"))
	})

	t.Run("owner revokes", func(t *testing.T) {
		require.NoError(t, svc.Revoke("subject-1", "user", device.ID))
		assert.False(t, svc.IsTrusted("subject-1", "user", "fp-abc"))
	})

	t.Run("missing device", func(t *testing.T) {
		assert.ErrorIs(t, svc.Revoke("subject-1", "user", "no-such-id"), ErrDeviceNotFound)
	})
}

func TestService_RevokeAll(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Trust("subject-1", "user", "fp-1", "")
	require.NoError(t, err)
	_, err = svc.Trust("subject-1", "user", "fp-2", "")
	require.NoError(t, err)
	_, err = svc.Trust("subject-1", "admin", "fp-1", "")
	require.NoError(t, err)
	_, err = svc.Trust("subject-2", "user", "fp-3", "")
	require.NoError(t, err)

	revoked, err := svc.RevokeAll("subject-1", "user")
	require.NoError(t, err)
	assert.Equal(t, int64(2), revoked)

	assert.False(t, svc.IsTrusted("subject-1", "user", "fp-1"))
	assert.True(t, svc.IsTrusted("subject-1", "admin", "fp-1"), "admin realm records survive a user-realm revoke-all")
	assert.True(t, svc.IsTrusted("subject-2", "user", "fp-3"))
}

func TestService_ListAndCleanup(t *testing.T) {
	svc, db := setupService(t)

	_, err := svc.Trust("subject-1", "user", "fp-1", "Laptop")
	require.NoError(t, err)
	expired, err := svc.Trust("subject-1", "user", "fp-2", "Old phone")
	require.NoError(t, err)
	_, err = svc.Trust("subject-1", "admin", "fp-3", "Work desktop")
	require.NoError(t, err)

	require.NoError(t, db.Model(&TrustedDevice{}).
		Where("id = ?", expired.ID).
		UpdateColumn("expires_at", time.Now().Add(-time.Hour)).Error)

	devices, err := svc.ListDevices("subject-1", "user")
	require.NoError(t, err)
	require.Len(t, devices, 1, "expired and other-realm records are not listed")
	assert.Equal(t, "Laptop", devices[0].Label)

	removed, err := svc.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
