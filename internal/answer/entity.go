// AngelaMos | 2026
// entity.go

package answer

import (
	"strings"
	"time"
)

const MinBodyLength = 10

type Answer struct {
	ID           string    `db:"id"`
	QuestionID   string    `db:"question_id"`
	AuthorID     string    `db:"author_id"`
	Body         string    `db:"body"`
	IsAccepted   bool      `db:"is_accepted"`
	IsActive     bool      `db:"is_active"`
	LastActivity time.Time `db:"last_activity"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// View is an answer joined with its author and net score.
type View struct {
	Answer
	AuthorFirstName  string  `db:"author_first_name"`
	AuthorLastName   string  `db:"author_last_name"`
	AuthorUsername   *string `db:"author_username"`
	AuthorReputation int     `db:"author_reputation"`
	VoteScore        int     `db:"vote_score"`
}

func (v *View) AuthorName() string {
	return strings.TrimSpace(v.AuthorFirstName + " " + v.AuthorLastName)
}

// Parent is the locked question an answer belongs to.
type Parent struct {
	ID               string  `db:"id"`
	AuthorID         string  `db:"author_id"`
	Title            string  `db:"title"`
	AcceptedAnswerID *string `db:"accepted_answer_id"`
}

func (p *Parent) HasAccepted(answerID string) bool {
	return p.AcceptedAnswerID != nil && *p.AcceptedAnswerID == answerID
}

// Acceptance is the outcome of an accept or unaccept request. Changed is
// false when the request was a no-op.
type Acceptance struct {
	AnswerID   string
	QuestionID string
	Accepted   bool
	Changed    bool
}
