package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/stepup/testutils"
)

func TestWatcher_DispatchesPendingNotifications(t *testing.T) {
	source := NewChannelSource(10)
	mailer := testutils.NewCapturingMailer()
	watcher := NewWatcher(source, mailer, WatcherOptions{PollInterval: 10 * time.Millisecond}, nil)

	source.C <- Notification{
		ID:             "n-1",
		RecipientEmail: "user@example.com",
		RecipientName:  "أحمد",
		Type:           TypeLike,
		ActorName:      "سارة",
	}

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	require.Eventually(t, func() bool {
		return mailer.Count() == 1
	}, time.Second, 5*time.Millisecond)

	msg := mailer.Message(0)
	assert.Equal(t, "user@example.com", msg.To)
	assert.Contains(t, msg.Subject, "أعجب")
	assert.Contains(t, msg.Text, "أحمد")
}

func TestWatcher_SkipTypesAcknowledgedWithoutEmail(t *testing.T) {
	source := NewChannelSource(10)
	mailer := testutils.NewCapturingMailer()
	watcher := NewWatcher(source, mailer, WatcherOptions{
		PollInterval: 10 * time.Millisecond,
		SkipTypes:    []Type{TypeSystem},
	}, nil)

	source.C <- Notification{ID: "n-1", RecipientEmail: "user@example.com", Type: TypeSystem}
	source.C <- Notification{ID: "n-2", RecipientEmail: "user@example.com", Type: TypeMessage}

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	require.Eventually(t, func() bool {
		return mailer.Count() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, mailer.Message(0).Subject, "رسالة")
}

func TestWatcher_LoginAlertCarriesSecurityLevel(t *testing.T) {
	source := NewChannelSource(10)
	mailer := testutils.NewCapturingMailer()
	watcher := NewWatcher(source, mailer, WatcherOptions{
		PollInterval: 10 * time.Millisecond,
		GeoLookup: func(ip string) (string, string) {
			return "مصر", "القاهرة"
		},
	}, nil)

	source.C <- Notification{
		ID:             "n-1",
		RecipientEmail: "user@example.com",
		RecipientName:  "أحمد",
		Type:           TypeLogin,
		Realm:          "user",
		IPAddress:      "203.0.113.9",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		LoginMethod:    "two_factor",
	}

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	require.Eventually(t, func() bool {
		return mailer.Count() == 1
	}, time.Second, 5*time.Millisecond)

	msg := mailer.Message(0)
	assert.Contains(t, msg.Text, "القاهرة")
	assert.Contains(t, msg.Text, "التحقق الثنائي")
	// A fully attributed login scores high, so no warning note.
	assert.NotContains(t, msg.Text, "تغيير كلمة المرور")
}

func TestWatcher_FailedSendRetriesNextCycle(t *testing.T) {
	db := testutils.SetupTestDB(t, &Notification{})
	source := NewPollingSource(db)
	mailer := testutils.NewCapturingMailer()
	mailer.Fail(errors.New("relay down"))
	watcher := NewWatcher(source, mailer, WatcherOptions{PollInterval: 10 * time.Millisecond}, nil)

	require.NoError(t, db.Create(&Notification{
		RecipientEmail: "user@example.com",
		Type:           TypeMatch,
	}).Error)

	require.NoError(t, watcher.Start())

	// Let a few failing cycles pass, then heal the mailer.
	time.Sleep(50 * time.Millisecond)
	mailer.Fail(nil)

	require.Eventually(t, func() bool {
		return mailer.Count() == 1
	}, time.Second, 5*time.Millisecond)
	watcher.Stop()

	var remaining []Notification
	require.NoError(t, db.Where("emailed_at IS NULL").Find(&remaining).Error)
	assert.Empty(t, remaining, "delivered notification must be acknowledged")
}

func TestWatcher_StartStopLifecycle(t *testing.T) {
	source := NewChannelSource(1)
	watcher := NewWatcher(source, testutils.NewCapturingMailer(), WatcherOptions{PollInterval: 10 * time.Millisecond}, nil)

	require.NoError(t, watcher.Start())
	assert.Error(t, watcher.Start(), "double start must be rejected")

	watcher.Stop()
	watcher.Stop() // idempotent

	// Restart works after a clean stop.
	require.NoError(t, watcher.Start())
	watcher.Stop()
}

func TestPollingSource(t *testing.T) {
	db := testutils.SetupTestDB(t, &Notification{})
	source := NewPollingSource(db)
	ctx := context.Background()

	now := time.Now()
	emailed := now.Add(-time.Minute)
	require.NoError(t, db.Create(&Notification{
		ID: "old", RecipientEmail: "a@example.com", Type: TypeLike,
		EmailedAt: &emailed, CreatedAt: now.Add(-2 * time.Minute),
	}).Error)
	require.NoError(t, db.Create(&Notification{
		ID: "first", RecipientEmail: "a@example.com", Type: TypeLike,
		CreatedAt: now.Add(-time.Minute),
	}).Error)
	require.NoError(t, db.Create(&Notification{
		ID: "second", RecipientEmail: "a@example.com", Type: TypeLike,
		CreatedAt: now,
	}).Error)

	pending, err := source.Poll(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2, "already emailed rows are excluded")
	assert.Equal(t, "first", pending[0].ID, "oldest first")

	require.NoError(t, source.MarkEmailed([]string{"first", "second"}))

	pending, err = source.Poll(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
