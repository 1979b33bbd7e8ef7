// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id string, role access.Role) (*User, error)
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	CountContent(ctx context.Context, id string) (ContentCounts, error)
	ListQuestionSummaries(ctx context.Context, authorID string, page core.Page) ([]QuestionSummary, error)
	ListAnswerSummaries(ctx context.Context, authorID string, page core.Page) ([]AnswerSummary, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, external_id, email, first_name, last_name, username, role,
	reputation, bio, location, website, watched_tags, is_active,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, external_id, email, first_name, last_name, username, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING reputation, is_active, created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.ExternalID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Role,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByExternalID(
	ctx context.Context,
	externalID string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by external id: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET bio = $2, location = $3, website = $4, watched_tags = $5, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Bio,
		user.Location,
		user.Website,
		user.WatchedTags,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *repository) UpdateRole(
	ctx context.Context,
	id string,
	role access.Role,
) (*User, error) {
	query := `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, id, role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update role: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	return &user, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d OR username ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.Page.Size, params.Page.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) CountContent(ctx context.Context, id string) (ContentCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM questions WHERE author_id = $1 AND is_active) AS questions,
			(SELECT COUNT(*) FROM answers WHERE author_id = $1 AND is_active) AS answers`

	var counts ContentCounts
	if err := r.db.GetContext(ctx, &counts, query, id); err != nil {
		return ContentCounts{}, fmt.Errorf("count user content: %w", err)
	}

	return counts, nil
}

func (r *repository) ListQuestionSummaries(
	ctx context.Context,
	authorID string,
	page core.Page,
) ([]QuestionSummary, error) {
	query := `
		SELECT q.id, q.title, q.tags, q.created_at,
			COALESCE((
				SELECT COUNT(*) FILTER (WHERE v.direction = 'up')
				     - COUNT(*) FILTER (WHERE v.direction = 'down')
				FROM votes v
				WHERE v.target_type = 'question' AND v.target_id = q.id
			), 0) AS vote_score,
			(SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id AND a.is_active) AS answer_count
		FROM questions q
		WHERE q.author_id = $1 AND q.is_active
		ORDER BY q.created_at DESC, q.id DESC
		LIMIT $2 OFFSET $3`

	var out []QuestionSummary
	if err := r.db.SelectContext(ctx, &out, query, authorID, page.Size, page.Offset()); err != nil {
		return nil, fmt.Errorf("list user questions: %w", err)
	}

	return out, nil
}

func (r *repository) ListAnswerSummaries(
	ctx context.Context,
	authorID string,
	page core.Page,
) ([]AnswerSummary, error) {
	query := `
		SELECT a.id, LEFT(a.body, 200) AS excerpt, a.is_accepted, a.created_at,
			q.id AS question_id, q.title AS question_title,
			COALESCE((
				SELECT COUNT(*) FILTER (WHERE v.direction = 'up')
				     - COUNT(*) FILTER (WHERE v.direction = 'down')
				FROM votes v
				WHERE v.target_type = 'answer' AND v.target_id = a.id
			), 0) AS vote_score
		FROM answers a
		JOIN questions q ON q.id = a.question_id AND q.is_active
		WHERE a.author_id = $1 AND a.is_active
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $2 OFFSET $3`

	var out []AnswerSummary
	if err := r.db.SelectContext(ctx, &out, query, authorID, page.Size, page.Offset()); err != nil {
		return nil, fmt.Errorf("list user answers: %w", err)
	}

	return out, nil
}
