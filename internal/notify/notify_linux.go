//go:build linux

package notify

import (
	"github.com/genricoloni/mpdbar/internal/domain"
	"go.uber.org/zap"
)

// NewNotifier creates the platform notifier (Linux implementation)
func NewNotifier(logger *zap.Logger) domain.Notifier {
	logger.Info("Desktop banners via org.freedesktop.Notifications")
	return NewDBusNotifier(logger, DialSessionBus)
}
