// AngelaMos | 2026
// service.go

package notification

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/stackit/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of the recipient's notifications, newest first, with
// the unread count at the time of the call.
func (s *Service) List(
	ctx context.Context,
	recipientID string,
	unreadOnly bool,
	page core.Page,
) (*Page, error) {
	if recipientID == "" {
		return nil, fmt.Errorf("list notifications: %w", core.ErrUnauthorized)
	}

	items, total, err := s.repo.List(ctx, recipientID, unreadOnly, page)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	return &Page{Items: items, Total: total, UnreadCount: unread}, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	if recipientID == "" {
		return 0, fmt.Errorf("unread count: %w", core.ErrUnauthorized)
	}
	return s.repo.CountUnread(ctx, recipientID)
}

// MarkRead is idempotent. A notification owned by someone else is reported
// as missing.
func (s *Service) MarkRead(ctx context.Context, id, recipientID string) (*Notification, error) {
	if !core.ValidID(id) {
		return nil, fmt.Errorf("mark notification read: %w", core.ErrNotFound)
	}
	return s.repo.MarkRead(ctx, id, recipientID)
}

// MarkAllRead returns how many notifications changed state.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	if recipientID == "" {
		return 0, fmt.Errorf("mark all notifications read: %w", core.ErrUnauthorized)
	}
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *Service) Delete(ctx context.Context, id, recipientID string) error {
	if !core.ValidID(id) {
		return fmt.Errorf("delete notification: %w", core.ErrNotFound)
	}
	return s.repo.Delete(ctx, id, recipientID)
}
