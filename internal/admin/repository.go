// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/stackit/internal/core"
)

const recentLimit = 5

type Counts struct {
	Users     int `db:"users"     json:"users"`
	Questions int `db:"questions" json:"questions"`
	Answers   int `db:"answers"   json:"answers"`
	Votes     int `db:"votes"     json:"votes"`
}

type RecentQuestion struct {
	ID         string    `db:"id"          json:"id"`
	Title      string    `db:"title"       json:"title"`
	AuthorID   string    `db:"author_id"   json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

type RecentUser struct {
	ID        string    `db:"id"         json:"id"`
	Email     string    `db:"email"      json:"email"`
	Name      string    `db:"name"       json:"name"`
	Role      string    `db:"role"       json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Dashboard struct {
	Totals          Counts           `json:"totals"`
	Today           Counts           `json:"today"`
	RecentQuestions []RecentQuestion `json:"recent_questions"`
	RecentUsers     []RecentUser     `json:"recent_users"`
}

type Repository interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// countsSince counts active content created at or after $1.
const countsSince = `
	SELECT
		(SELECT COUNT(*) FROM users     WHERE is_active AND created_at >= $1) AS users,
		(SELECT COUNT(*) FROM questions WHERE is_active AND created_at >= $1) AS questions,
		(SELECT COUNT(*) FROM answers   WHERE is_active AND created_at >= $1) AS answers,
		(SELECT COUNT(*) FROM votes     WHERE created_at >= $1)               AS votes`

func (r *repository) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{
		RecentQuestions: []RecentQuestion{},
		RecentUsers:     []RecentUser{},
	}

	if err := r.db.GetContext(ctx, &d.Totals, countsSince, time.Time{}); err != nil {
		return nil, fmt.Errorf("count totals: %w", err)
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := r.db.GetContext(ctx, &d.Today, countsSince, midnight); err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}

	questions := `
		SELECT q.id, q.title, q.author_id,
			TRIM(u.first_name || ' ' || u.last_name) AS author_name, q.created_at
		FROM questions q
		JOIN users u ON u.id = q.author_id
		WHERE q.is_active
		ORDER BY q.created_at DESC, q.id DESC
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &d.RecentQuestions, questions, recentLimit); err != nil {
		return nil, fmt.Errorf("recent questions: %w", err)
	}

	users := `
		SELECT id, email, TRIM(first_name || ' ' || last_name) AS name, role, created_at
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &d.RecentUsers, users, recentLimit); err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}

	return d, nil
}
