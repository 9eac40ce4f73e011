package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/stepup/services/logging"
	"go.uber.org/zap"
)

var ErrAllTransportsFailed = errors.New("all mail transports failed")

// Service dispatches messages through a prioritized transport chain.
// Each transport is tried in order; the first success wins and later
// transports are never contacted.
type Service struct {
	transports []Transport
	logger     *logging.Service
}

func NewService(transports []Transport, logger *logging.Service) (*Service, error) {
	if len(transports) == 0 {
		return nil, fmt.Errorf("mail service requires at least one transport")
	}

	if logger != nil {
		names := make([]string, len(transports))
		for i, t := range transports {
			names[i] = t.Name()
		}
		logger.Info("mail service initialized", zap.Strings("transports", names))
	}

	return &Service{transports: transports, logger: logger}, nil
}

func (s *Service) Send(ctx context.Context, msg Message) error {
	var lastErr error

	for _, transport := range s.transports {
		startTime := time.Now()
		err := transport.Send(ctx, msg)
		duration := time.Since(startTime)

		if err == nil {
			if s.logger != nil {
				s.logger.Info("email sent",
					zap.String("transport", transport.Name()),
					zap.String("to", msg.To),
					zap.String("subject", msg.Subject),
					zap.Duration("send_duration", duration))
			}
			return nil
		}

		lastErr = err
		if s.logger != nil {
			s.logger.Warn("mail transport failed, trying next",
				zap.Error(err),
				zap.String("transport", transport.Name()),
				zap.String("to", msg.To),
				zap.Duration("attempt_duration", duration))
		}
	}

	if s.logger != nil {
		s.logger.Error("all mail transports failed",
			zap.Error(lastErr),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
	}
	return fmt.Errorf("%w: %w", ErrAllTransportsFailed, lastErr)
}
