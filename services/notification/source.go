package notification

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// EventSource feeds the watcher. Poll returns pending notifications in
// creation order; MarkEmailed acknowledges the ones that were
// dispatched so they are not returned again.
type EventSource interface {
	Poll(ctx context.Context) ([]Notification, error)
	MarkEmailed(ids []string) error
}

// PollingSource tails the notifications table for rows that have not
// been emailed yet.
type PollingSource struct {
	db        *gorm.DB
	batchSize int
}

func NewPollingSource(db *gorm.DB) *PollingSource {
	return &PollingSource{db: db, batchSize: 50}
}

func (s *PollingSource) Poll(ctx context.Context) ([]Notification, error) {
	var rows []Notification
	err := s.db.WithContext(ctx).
		Where("emailed_at IS NULL").
		Order("created_at ASC").
		Limit(s.batchSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to poll pending notifications: %w", err)
	}
	return rows, nil
}

func (s *PollingSource) MarkEmailed(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	err := s.db.Model(&Notification{}).
		Where("id IN ?", ids).
		Update("emailed_at", now).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications as emailed: %w", err)
	}
	return nil
}

// ChannelSource adapts an in-memory channel to EventSource, used by
// tests and by embedders that push events directly.
type ChannelSource struct {
	C chan Notification
}

func NewChannelSource(buffer int) *ChannelSource {
	return &ChannelSource{C: make(chan Notification, buffer)}
}

func (s *ChannelSource) Poll(ctx context.Context) ([]Notification, error) {
	var rows []Notification
	for {
		select {
		case n := <-s.C:
			rows = append(rows, n)
		default:
			return rows, nil
		}
	}
}

func (s *ChannelSource) MarkEmailed(ids []string) error {
	return nil
}
