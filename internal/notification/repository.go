// AngelaMos | 2026
// repository.go

package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/stackit/internal/core"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, recipientID string, unreadOnly bool, page core.Page) ([]Notification, int, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, id, recipientID string) (*Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	Delete(ctx context.Context, id, recipientID string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, sender_id, type, title, message,
			related_question_id, related_answer_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING is_read, created_at`

	err := r.db.GetContext(ctx, n, query,
		n.ID,
		n.RecipientID,
		n.SenderID,
		n.Type,
		n.Title,
		n.Message,
		n.RelatedQuestionID,
		n.RelatedAnswerID,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	recipientID string,
	unreadOnly bool,
	page core.Page,
) ([]Notification, int, error) {
	where := "n.recipient_id = $1"
	if unreadOnly {
		where += " AND NOT n.is_read"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM notifications n WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, recipientID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `
		SELECT n.id, n.recipient_id, n.sender_id, n.type, n.title, n.message,
			n.related_question_id, q.title AS related_question_title,
			n.related_answer_id, n.is_read, n.read_at, n.created_at
		FROM notifications n
		LEFT JOIN questions q ON q.id = n.related_question_id
		WHERE ` + where + `
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3`

	var out []Notification
	if err := r.db.SelectContext(ctx, &out, query, recipientID, page.Size, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	return out, total, nil
}

func (r *repository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`

	var n int
	if err := r.db.GetContext(ctx, &n, query, recipientID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return n, nil
}

// MarkRead keeps the first read_at when called again.
func (r *repository) MarkRead(
	ctx context.Context,
	id, recipientID string,
) (*Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, recipient_id, sender_id, type, title, message,
			related_question_id, related_answer_id, is_read, read_at, created_at`

	var n Notification
	err := r.db.GetContext(ctx, &n, query, id, recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark notification read: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}

	return &n, nil
}

func (r *repository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND NOT is_read`

	result, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return int(affected), nil
}

func (r *repository) Delete(ctx context.Context, id, recipientID string) error {
	query := `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete notification: %w", core.ErrNotFound)
	}

	return nil
}
