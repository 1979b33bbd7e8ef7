// AngelaMos | 2026
// entity.go

package question

import (
	"strings"
	"time"

	"github.com/carterperez-dev/stackit/internal/core"
)

type Question struct {
	ID               string          `db:"id"`
	Title            string          `db:"title"`
	Body             string          `db:"body"`
	Tags             core.StringList `db:"tags"`
	AuthorID         string          `db:"author_id"`
	ViewCount        int             `db:"view_count"`
	AcceptedAnswerID *string         `db:"accepted_answer_id"`
	IsActive         bool            `db:"is_active"`
	LastActivity     time.Time       `db:"last_activity"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// Author is the public view of a content author, joined from users.
type Author struct {
	AuthorID   string  `db:"author_id"`
	FirstName  string  `db:"author_first_name"`
	LastName   string  `db:"author_last_name"`
	Username   *string `db:"author_username"`
	Reputation int     `db:"author_reputation"`
}

func (a Author) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Summary is a question with its derived counts as listed.
type Summary struct {
	ID               string          `db:"id"`
	Title            string          `db:"title"`
	Body             string          `db:"body"`
	Tags             core.StringList `db:"tags"`
	ViewCount        int             `db:"view_count"`
	AcceptedAnswerID *string         `db:"accepted_answer_id"`
	VoteScore        int             `db:"vote_score"`
	AnswerCount      int             `db:"answer_count"`
	LastActivity     time.Time       `db:"last_activity"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
	Author
}

type AnswerView struct {
	ID         string    `db:"id"`
	Body       string    `db:"body"`
	IsAccepted bool      `db:"is_accepted"`
	VoteScore  int       `db:"vote_score"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	Author
}

// Detail is a question page: the question, its active answers and the
// viewer's votes keyed by target id.
type Detail struct {
	Summary
	Answers      []AnswerView
	QuestionVote string
	AnswerVotes  map[string]string
}
