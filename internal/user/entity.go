// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
)

type User struct {
	ID          string          `db:"id"`
	ExternalID  string          `db:"external_id"`
	Email       string          `db:"email"`
	FirstName   string          `db:"first_name"`
	LastName    string          `db:"last_name"`
	Username    *string         `db:"username"`
	Role        access.Role     `db:"role"`
	Reputation  int             `db:"reputation"`
	Bio         string          `db:"bio"`
	Location    string          `db:"location"`
	Website     string          `db:"website"`
	WatchedTags core.StringList `db:"watched_tags"`
	IsActive    bool            `db:"is_active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == access.RoleAdmin
}

func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != nil {
		return *u.Username
	}
	return u.Email
}

func (u *User) Actor() access.Actor {
	return access.Actor{
		UserID: u.ID,
		Role:   u.Role,
		Name:   u.DisplayName(),
	}
}

// ContentCounts are the active questions and answers a user has authored.
type ContentCounts struct {
	Questions int `db:"questions"`
	Answers   int `db:"answers"`
}

type QuestionSummary struct {
	ID          string          `db:"id"`
	Title       string          `db:"title"`
	Tags        core.StringList `db:"tags"`
	VoteScore   int             `db:"vote_score"`
	AnswerCount int             `db:"answer_count"`
	CreatedAt   time.Time       `db:"created_at"`
}

type AnswerSummary struct {
	ID            string    `db:"id"`
	Excerpt       string    `db:"excerpt"`
	VoteScore     int       `db:"vote_score"`
	IsAccepted    bool      `db:"is_accepted"`
	QuestionID    string    `db:"question_id"`
	QuestionTitle string    `db:"question_title"`
	CreatedAt     time.Time `db:"created_at"`
}
