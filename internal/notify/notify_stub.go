//go:build !linux

package notify

import (
	"context"

	"github.com/genricoloni/mpdbar/internal/domain"
	"go.uber.org/zap"
)

// StubNotifier is a placeholder for platforms without a notification bus
type StubNotifier struct {
	logger *zap.Logger
}

// NewNotifier creates a stub notifier for unsupported platforms
func NewNotifier(logger *zap.Logger) domain.Notifier {
	logger.Warn("Desktop banners are not yet implemented for this platform")
	return &StubNotifier{logger: logger}
}

// Notify returns ErrUnsupported
func (n *StubNotifier) Notify(ctx context.Context, b domain.Banner) error {
	return ErrUnsupported
}
