package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/api/metrics"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

const defaultFeedLimit = 20

type notificationService struct {
	repo  ports.NotificationRepository
	limit int
	log   zerolog.Logger
}

// NewNotificationService returns a NotificationService showing at most limit
// notifications per feed (20 when limit is not positive).
func NewNotificationService(repo ports.NotificationRepository, limit int, log zerolog.Logger) ports.NotificationService {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	return &notificationService{repo: repo, limit: limit, log: log}
}

func (s *notificationService) Feed(ctx context.Context, userID string) (*ports.NotificationFeed, error) {
	items, err := s.repo.ListRecent(ctx, userID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("notification feed: %w", err)
	}
	if items == nil {
		items = []domain.Notification{}
	}
	// The badge counts unread rows among the fetched items only.
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return &ports.NotificationFeed{Items: items, Unread: unread}, nil
}

// Open marks the notification read. Only the owner's rows match, so another
// user's id yields domain.ErrNotificationNotFound.
func (s *notificationService) Open(ctx context.Context, userID, id string) (*domain.Notification, error) {
	n, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("open notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	s.log.Info().Str("user_id", userID).Int64("updated", n).Msg("notifications marked read")
	return n, nil
}

// StoreSender writes notifications synchronously through the repository.
type StoreSender struct {
	repo ports.NotificationRepository
}

func NewStoreSender(repo ports.NotificationRepository) *StoreSender {
	return &StoreSender{repo: repo}
}

func (s *StoreSender) Send(ctx context.Context, n *domain.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		metrics.NotificationsDispatchedTotal.WithLabelValues("sync", "error").Inc()
		return fmt.Errorf("send notification: %w", err)
	}
	metrics.NotificationsDispatchedTotal.WithLabelValues("sync", "ok").Inc()
	return nil
}
