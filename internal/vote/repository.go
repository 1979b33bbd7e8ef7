// AngelaMos | 2026
// repository.go

package vote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/stackit/internal/core"
)

// Target is a locked, active entity being voted on. For a question
// QuestionID equals ID.
type Target struct {
	Kind          Kind   `db:"-"`
	ID            string `db:"id"`
	AuthorID      string `db:"author_id"`
	QuestionID    string `db:"question_id"`
	QuestionTitle string `db:"question_title"`
}

type Repository interface {
	// WithinTx runs fn against a repository bound to one transaction.
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
	LockTarget(ctx context.Context, kind Kind, id string) (*Target, error)
	GetVote(ctx context.Context, kind Kind, targetID, userID string) (Direction, error)
	PutVote(ctx context.Context, kind Kind, targetID, userID string, dir Direction) error
	DeleteVote(ctx context.Context, kind Kind, targetID, userID string) error
	TouchActivity(ctx context.Context, kind Kind, id string) error
	Score(ctx context.Context, kind Kind, id string) (int, error)
	UserVotes(ctx context.Context, kind Kind, userID string, targetIDs []string) (map[string]Direction, error)
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

func (r *repository) LockTarget(ctx context.Context, kind Kind, id string) (*Target, error) {
	var query string
	switch kind {
	case KindQuestion:
		query = `
			SELECT id, author_id, id AS question_id, title AS question_title
			FROM questions
			WHERE id = $1 AND is_active
			FOR UPDATE`
	case KindAnswer:
		query = `
			SELECT a.id, a.author_id, a.question_id, q.title AS question_title
			FROM answers a
			JOIN questions q ON q.id = a.question_id
			WHERE a.id = $1 AND a.is_active AND q.is_active
			FOR UPDATE OF a`
	default:
		return nil, fmt.Errorf("lock vote target: unknown kind %q", kind)
	}

	var t Target
	err := r.tx.Conn().GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lock %s: %w", kind, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", kind, err)
	}

	t.Kind = kind
	return &t, nil
}

func (r *repository) GetVote(
	ctx context.Context,
	kind Kind,
	targetID, userID string,
) (Direction, error) {
	query := `
		SELECT direction FROM votes
		WHERE target_type = $1 AND target_id = $2 AND user_id = $3`

	var dir Direction
	err := r.tx.Conn().GetContext(ctx, &dir, query, kind, targetID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return None, nil
	}
	if err != nil {
		return None, fmt.Errorf("get vote: %w", err)
	}

	return dir, nil
}

func (r *repository) PutVote(
	ctx context.Context,
	kind Kind,
	targetID, userID string,
	dir Direction,
) error {
	query := `
		INSERT INTO votes (target_type, target_id, user_id, direction)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (target_type, target_id, user_id)
		DO UPDATE SET direction = EXCLUDED.direction, created_at = NOW()`

	if _, err := r.tx.Conn().ExecContext(ctx, query, kind, targetID, userID, dir); err != nil {
		return fmt.Errorf("put vote: %w", err)
	}

	return nil
}

func (r *repository) DeleteVote(ctx context.Context, kind Kind, targetID, userID string) error {
	query := `DELETE FROM votes WHERE target_type = $1 AND target_id = $2 AND user_id = $3`

	if _, err := r.tx.Conn().ExecContext(ctx, query, kind, targetID, userID); err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}

	return nil
}

func (r *repository) TouchActivity(ctx context.Context, kind Kind, id string) error {
	var query string
	switch kind {
	case KindQuestion:
		query = `UPDATE questions SET last_activity = NOW() WHERE id = $1`
	case KindAnswer:
		query = `UPDATE answers SET last_activity = NOW() WHERE id = $1`
	default:
		return fmt.Errorf("touch activity: unknown kind %q", kind)
	}

	if _, err := r.tx.Conn().ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("touch %s activity: %w", kind, err)
	}

	return nil
}

func (r *repository) Score(ctx context.Context, kind Kind, id string) (int, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE direction = 'up')
		     - COUNT(*) FILTER (WHERE direction = 'down')
		FROM votes
		WHERE target_type = $1 AND target_id = $2`

	var score int
	if err := r.tx.Conn().GetContext(ctx, &score, query, kind, id); err != nil {
		return 0, fmt.Errorf("score %s: %w", kind, err)
	}

	return score, nil
}

// UserVotes returns the user's direction per target for the targets they
// have voted on.
func (r *repository) UserVotes(
	ctx context.Context,
	kind Kind,
	userID string,
	targetIDs []string,
) (map[string]Direction, error) {
	out := make(map[string]Direction, len(targetIDs))
	if userID == "" || len(targetIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT target_id, direction FROM votes
		WHERE target_type = ? AND user_id = ? AND target_id IN (?)`,
		kind, userID, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("build user votes query: %w", err)
	}

	var rows []struct {
		TargetID  string    `db:"target_id"`
		Direction Direction `db:"direction"`
	}
	if err := r.tx.Conn().SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return nil, fmt.Errorf("list user votes: %w", err)
	}

	for _, row := range rows {
		out[row.TargetID] = row.Direction
	}
	return out, nil
}
