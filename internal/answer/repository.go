// AngelaMos | 2026
// repository.go

package answer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/stackit/internal/core"
)

type Repository interface {
	// WithinTx runs fn against a repository bound to one transaction.
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
	Create(ctx context.Context, a *Answer) error
	Get(ctx context.Context, id string) (*Answer, error)
	GetView(ctx context.Context, id string) (*View, error)
	UpdateBody(ctx context.Context, id, body string) error
	SoftDelete(ctx context.Context, id string) error
	LockQuestion(ctx context.Context, questionID string) (*Parent, error)
	TouchQuestion(ctx context.Context, questionID string) error
	ClearAccepted(ctx context.Context, questionID string) error
	MarkAccepted(ctx context.Context, answerID string) error
	SetAcceptedPointer(ctx context.Context, questionID string, answerID *string) error
}

type repository struct {
	tx core.Transactor
}

func NewRepository(db core.DBTX) Repository {
	return &repository{tx: core.NewTransactor(db)}
}

func (r *repository) WithinTx(ctx context.Context, fn func(repo Repository) error) error {
	return r.tx.Within(ctx, func(db core.DBTX) error {
		return fn(&repository{tx: core.NewTransactor(db)})
	})
}

const answerColumns = `
	a.id, a.question_id, a.author_id, a.body, a.is_accepted, a.is_active,
	a.last_activity, a.created_at, a.updated_at`

func (r *repository) Create(ctx context.Context, a *Answer) error {
	query := `
		INSERT INTO answers (id, question_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING is_accepted, is_active, last_activity, created_at, updated_at`

	err := r.tx.Conn().GetContext(ctx, a, query, a.ID, a.QuestionID, a.AuthorID, a.Body)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}

	return nil
}

// Get returns an active answer of an active question.
func (r *repository) Get(ctx context.Context, id string) (*Answer, error) {
	query := `SELECT ` + answerColumns + `
		FROM answers a
		JOIN questions q ON q.id = a.question_id AND q.is_active
		WHERE a.id = $1 AND a.is_active`

	var a Answer
	err := r.tx.Conn().GetContext(ctx, &a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get answer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}

	return &a, nil
}

func (r *repository) GetView(ctx context.Context, id string) (*View, error) {
	query := `SELECT ` + answerColumns + `,
			u.first_name AS author_first_name, u.last_name AS author_last_name,
			u.username AS author_username, u.reputation AS author_reputation,
			(SELECT COUNT(*) FILTER (WHERE v.direction = 'up')
			      - COUNT(*) FILTER (WHERE v.direction = 'down')
			 FROM votes v
			 WHERE v.target_type = 'answer' AND v.target_id = a.id) AS vote_score
		FROM answers a
		JOIN users u ON u.id = a.author_id
		WHERE a.id = $1 AND a.is_active`

	var v View
	err := r.tx.Conn().GetContext(ctx, &v, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get answer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}

	return &v, nil
}

func (r *repository) UpdateBody(ctx context.Context, id, body string) error {
	query := `
		UPDATE answers
		SET body = $2, updated_at = NOW(), last_activity = NOW()
		WHERE id = $1 AND is_active`

	result, err := r.tx.Conn().ExecContext(ctx, query, id, body)
	if err != nil {
		return fmt.Errorf("update answer: %w", err)
	}

	return requireRow(result, "update answer")
}

// SoftDelete deactivates the answer and drops its accepted flag.
func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE answers
		SET is_active = FALSE, is_accepted = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active`

	result, err := r.tx.Conn().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}

	return requireRow(result, "delete answer")
}

// LockQuestion takes the row lock that serializes every acceptance change
// on the question.
func (r *repository) LockQuestion(ctx context.Context, questionID string) (*Parent, error) {
	query := `
		SELECT id, author_id, title, accepted_answer_id
		FROM questions
		WHERE id = $1 AND is_active
		FOR UPDATE`

	var p Parent
	err := r.tx.Conn().GetContext(ctx, &p, query, questionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lock question: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock question: %w", err)
	}

	return &p, nil
}

func (r *repository) TouchQuestion(ctx context.Context, questionID string) error {
	query := `UPDATE questions SET last_activity = NOW() WHERE id = $1`

	if _, err := r.tx.Conn().ExecContext(ctx, query, questionID); err != nil {
		return fmt.Errorf("touch question: %w", err)
	}

	return nil
}

func (r *repository) ClearAccepted(ctx context.Context, questionID string) error {
	query := `UPDATE answers SET is_accepted = FALSE WHERE question_id = $1 AND is_accepted`

	if _, err := r.tx.Conn().ExecContext(ctx, query, questionID); err != nil {
		return fmt.Errorf("clear accepted answer: %w", err)
	}

	return nil
}

func (r *repository) MarkAccepted(ctx context.Context, answerID string) error {
	query := `UPDATE answers SET is_accepted = TRUE, last_activity = NOW() WHERE id = $1 AND is_active`

	result, err := r.tx.Conn().ExecContext(ctx, query, answerID)
	if err != nil {
		return fmt.Errorf("accept answer: %w", err)
	}

	return requireRow(result, "accept answer")
}

func (r *repository) SetAcceptedPointer(ctx context.Context, questionID string, answerID *string) error {
	query := `UPDATE questions SET accepted_answer_id = $2 WHERE id = $1`

	if _, err := r.tx.Conn().ExecContext(ctx, query, questionID, answerID); err != nil {
		return fmt.Errorf("set accepted answer: %w", err)
	}

	return nil
}

func requireRow(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
