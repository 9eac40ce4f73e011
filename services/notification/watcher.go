package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tech-arch1tect/stepup/services/logging"
	"github.com/tech-arch1tect/stepup/services/mail"
	"github.com/tech-arch1tect/stepup/services/security"
	"go.uber.org/zap"
)

// Mailer is the outbound email capability the watcher depends on.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// defaultTitles fills in wording when the producing side left Title
// empty.
var defaultTitles = map[Type]string{
	TypeProfileView: "شخص ما شاهد ملفك الشخصي",
	TypeLike:        "شخص ما أعجب بملفك الشخصي",
	TypeMessage:     "لديك رسالة جديدة",
	TypeMatch:       "لديك توافق جديد",
	TypeSystem:      "إشعار من رزقي",
	TypeLogin:       "تنبيه تسجيل دخول",
}

// Watcher turns pending notification rows into emails. It owns a
// polling loop with explicit Start/Stop and never writes rows other
// than stamping EmailedAt through the source.
type Watcher struct {
	source    EventSource
	mailer    Mailer
	lookup    security.GeoLookup
	interval  time.Duration
	skipTypes map[Type]bool
	logger    *logging.Service

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// WatcherOptions configures a Watcher; zero values get defaults.
type WatcherOptions struct {
	PollInterval time.Duration
	// SkipTypes are handled by another channel and never emailed here.
	SkipTypes []Type
	GeoLookup security.GeoLookup
}

func NewWatcher(source EventSource, mailer Mailer, opts WatcherOptions, logger *logging.Service) *Watcher {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	skip := make(map[Type]bool, len(opts.SkipTypes))
	for _, t := range opts.SkipTypes {
		skip[t] = true
	}
	return &Watcher{
		source:    source,
		mailer:    mailer,
		lookup:    opts.GeoLookup,
		interval:  interval,
		skipTypes: skip,
		logger:    logger,
	}
}

// Start launches the polling loop. Calling Start on a running watcher
// is an error.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return fmt.Errorf("notification watcher already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.stopped = make(chan struct{})

	go w.run(ctx)

	if w.logger != nil {
		w.logger.Info("notification watcher started",
			zap.Duration("poll_interval", w.interval))
	}
	return nil
}

// Stop halts the loop and waits for the in-flight cycle to finish.
// Safe to call on a stopped watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	stopped := w.stopped
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped

	if w.logger != nil {
		w.logger.Info("notification watcher stopped")
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.stopped)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle processes one poll batch. A failed send leaves the row pending
// for the next cycle; only delivered rows are acknowledged.
func (w *Watcher) cycle(ctx context.Context) {
	pending, err := w.source.Poll(ctx)
	if err != nil {
		if w.logger != nil {
			w.logger.Error("notification poll failed", zap.Error(err))
		}
		return
	}

	var delivered []string
	for _, n := range pending {
		if w.skipTypes[n.Type] {
			delivered = append(delivered, n.ID)
			continue
		}

		msg, err := w.compose(n)
		if err != nil {
			if w.logger != nil {
				w.logger.Error("failed to compose notification email", zap.Error(err),
					zap.String("notification_id", n.ID),
					zap.String("type", string(n.Type)))
			}
			// Unrenderable rows are acknowledged so they cannot wedge
			// the queue.
			delivered = append(delivered, n.ID)
			continue
		}

		if err := w.mailer.Send(ctx, msg); err != nil {
			if w.logger != nil {
				w.logger.Warn("notification email failed, will retry", zap.Error(err),
					zap.String("notification_id", n.ID))
			}
			continue
		}
		delivered = append(delivered, n.ID)
	}

	if len(delivered) > 0 {
		if err := w.source.MarkEmailed(delivered); err != nil && w.logger != nil {
			w.logger.Error("failed to acknowledge notifications", zap.Error(err))
		}
	}
}

func (w *Watcher) compose(n Notification) (mail.Message, error) {
	if n.Type == TypeLogin {
		return w.composeLoginAlert(n)
	}

	title := n.Title
	if title == "" {
		title = defaultTitles[n.Type]
	}
	body := n.Body
	if body == "" && n.ActorName != "" {
		body = fmt.Sprintf("%s: %s", title, n.ActorName)
	}
	return mail.NotificationEmail(n.RecipientEmail, n.RecipientName, title, body)
}

func (w *Watcher) composeLoginAlert(n Notification) (mail.Message, error) {
	info := security.Enrich(n.IPAddress, n.UserAgent, w.lookup)

	weights := security.UserWeights()
	if n.Realm == "admin" {
		weights = security.AdminWeights()
	}
	level := security.Score(info, weights, n.Privileged)

	return mail.LoginAlertEmail(mail.LoginAlertData{
		To:            n.RecipientEmail,
		Name:          n.RecipientName,
		Timestamp:     n.CreatedAt.Format("2006-01-02 15:04:05"),
		IPAddress:     info.IP,
		Location:      info.Location(),
		Browser:       info.Browser,
		DeviceType:    info.DeviceType,
		LoginMethod:   n.LoginMethod,
		SecurityLevel: string(level),
	})
}
