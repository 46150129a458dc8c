package ports

import (
	"context"

	"github.com/microsharks/dealroom/internal/core/domain"
)

// NotificationFeed is the bell panel content.
type NotificationFeed struct {
	Items  []domain.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// NotificationService serves the bell panel.
type NotificationService interface {
	Feed(ctx context.Context, userID string) (*NotificationFeed, error)
	// Open marks one notification read and returns it so the caller can
	// follow its link.
	Open(ctx context.Context, userID, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// NotificationSender delivers a workflow notification. Implementations may
// be synchronous or queue the write.
type NotificationSender interface {
	Send(ctx context.Context, n *domain.Notification) error
}
