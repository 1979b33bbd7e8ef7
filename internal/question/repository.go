// AngelaMos | 2026
// repository.go

package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/stackit/internal/core"
)

type Repository interface {
	Create(ctx context.Context, q *Question) error
	Get(ctx context.Context, id string) (*Question, error)
	GetSummary(ctx context.Context, id string) (*Summary, error)
	List(ctx context.Context, params ListParams) ([]Summary, int, error)
	ListAnswers(ctx context.Context, questionID string) ([]AnswerView, error)
	RecordView(ctx context.Context, questionID, viewerID string) (bool, error)
	SoftDelete(ctx context.Context, id string) error
}

type repository struct {
	tx core.Transactor
}

func NewRepository(db core.DBTX) Repository {
	return &repository{tx: core.NewTransactor(db)}
}

func (r *repository) Create(ctx context.Context, q *Question) error {
	query := `
		INSERT INTO questions (id, title, body, tags, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING view_count, is_active, last_activity, created_at, updated_at`

	err := r.tx.Conn().GetContext(ctx, q, query,
		q.ID,
		q.Title,
		q.Body,
		q.Tags,
		q.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}

	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Question, error) {
	query := `
		SELECT id, title, body, tags, author_id, view_count, accepted_answer_id,
			is_active, last_activity, created_at, updated_at
		FROM questions
		WHERE id = $1 AND is_active`

	var q Question
	err := r.tx.Conn().GetContext(ctx, &q, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get question: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}

	return &q, nil
}

func (r *repository) GetSummary(ctx context.Context, id string) (*Summary, error) {
	query := summarySelect + `
		WHERE q.id = $1 AND q.is_active`

	var s Summary
	err := r.tx.Conn().GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get question: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}

	return &s, nil
}

// List runs the count and the page fetch as two separate reads. Under
// concurrent writes the total may be off by the rows that changed between
// them.
func (r *repository) List(ctx context.Context, params ListParams) ([]Summary, int, error) {
	q := buildListQuery(params)

	var total int
	if err := r.tx.Conn().GetContext(ctx, &total, q.count, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	args := append(q.args, params.Page.Size, params.Page.Offset())

	var out []Summary
	if err := r.tx.Conn().SelectContext(ctx, &out, q.page, args...); err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}

	return out, total, nil
}

func (r *repository) ListAnswers(ctx context.Context, questionID string) ([]AnswerView, error) {
	query := `
		SELECT a.id, a.body, a.is_accepted, a.created_at, a.updated_at,
			u.id AS author_id, u.first_name AS author_first_name,
			u.last_name AS author_last_name, u.username AS author_username,
			u.reputation AS author_reputation,
			vs.score AS vote_score
		FROM answers a
		JOIN users u ON u.id = a.author_id
		CROSS JOIN LATERAL (
			SELECT COUNT(*) FILTER (WHERE v.direction = 'up')
			     - COUNT(*) FILTER (WHERE v.direction = 'down') AS score
			FROM votes v
			WHERE v.target_type = 'answer' AND v.target_id = a.id
		) vs
		WHERE a.question_id = $1 AND a.is_active
		ORDER BY a.is_accepted DESC, vote_score DESC, a.created_at ASC, a.id ASC`

	var out []AnswerView
	if err := r.tx.Conn().SelectContext(ctx, &out, query, questionID); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	return out, nil
}

// RecordView counts a view. A signed-in viewer is counted once per
// question; anonymous views always count. It reports whether the counter
// moved.
func (r *repository) RecordView(ctx context.Context, questionID, viewerID string) (bool, error) {
	var (
		result sql.Result
		err    error
	)

	if viewerID == "" {
		result, err = r.tx.Conn().ExecContext(ctx,
			`UPDATE questions SET view_count = view_count + 1 WHERE id = $1 AND is_active`,
			questionID)
	} else {
		result, err = r.tx.Conn().ExecContext(ctx, `
			WITH first_view AS (
				INSERT INTO question_views (question_id, user_id)
				VALUES ($1, $2)
				ON CONFLICT (question_id, user_id) DO NOTHING
				RETURNING question_id
			)
			UPDATE questions SET view_count = view_count + 1
			WHERE id = $1 AND is_active AND EXISTS (SELECT 1 FROM first_view)`,
			questionID, viewerID)
	}
	if err != nil {
		return false, fmt.Errorf("record question view: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record question view: %w", err)
	}

	return affected > 0, nil
}

// SoftDelete deactivates the question and its answers together.
func (r *repository) SoftDelete(ctx context.Context, id string) error {
	return r.tx.Within(ctx, func(db core.DBTX) error {
		result, err := db.ExecContext(ctx,
			`UPDATE questions SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`,
			id)
		if err != nil {
			return fmt.Errorf("delete question: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("delete question: %w", core.ErrNotFound)
		}

		if _, err := db.ExecContext(ctx,
			`UPDATE answers SET is_active = FALSE, updated_at = NOW() WHERE question_id = $1 AND is_active`,
			id); err != nil {
			return fmt.Errorf("delete question answers: %w", err)
		}

		return nil
	})
}
