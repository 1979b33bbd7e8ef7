// AngelaMos | 2026
// entity.go

package notification

import (
	"context"
	"time"
)

type Type string

const (
	TypeAnswerPosted   Type = "answer_posted"
	TypeAnswerAccepted Type = "answer_accepted"
	TypeAnswerVoted    Type = "answer_voted"
	TypeQuestionVoted  Type = "question_voted"
	TypeUserMentioned  Type = "user_mentioned"
	TypeCommentAdded   Type = "comment_added"
)

func (t Type) Valid() bool {
	switch t {
	case TypeAnswerPosted, TypeAnswerAccepted, TypeAnswerVoted,
		TypeQuestionVoted, TypeUserMentioned, TypeCommentAdded:
		return true
	default:
		return false
	}
}

type Notification struct {
	ID                   string     `db:"id"`
	RecipientID          string     `db:"recipient_id"`
	SenderID             string     `db:"sender_id"`
	Type                 Type       `db:"type"`
	Title                string     `db:"title"`
	Message              string     `db:"message"`
	RelatedQuestionID    *string    `db:"related_question_id"`
	RelatedQuestionTitle *string    `db:"related_question_title"`
	RelatedAnswerID      *string    `db:"related_answer_id"`
	IsRead               bool       `db:"is_read"`
	ReadAt               *time.Time `db:"read_at"`
	CreatedAt            time.Time  `db:"created_at"`
}

// Event is a request to notify one recipient. QuestionID and AnswerID are
// optional.
type Event struct {
	Recipient  string
	Sender     string
	Type       Type
	Title      string
	Message    string
	QuestionID string
	AnswerID   string
}

func (e Event) toNotification(id string) *Notification {
	n := &Notification{
		ID:          id,
		RecipientID: e.Recipient,
		SenderID:    e.Sender,
		Type:        e.Type,
		Title:       e.Title,
		Message:     e.Message,
	}
	if e.QuestionID != "" {
		q := e.QuestionID
		n.RelatedQuestionID = &q
	}
	if e.AnswerID != "" {
		a := e.AnswerID
		n.RelatedAnswerID = &a
	}
	return n
}

// Notifier is the fire-and-forget side of the dispatcher that other
// packages depend on.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}
