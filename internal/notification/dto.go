// AngelaMos | 2026
// dto.go

package notification

import (
	"time"

	"github.com/carterperez-dev/stackit/internal/core"
)

type QuestionRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type Response struct {
	ID              string       `json:"id"`
	Type            Type         `json:"type"`
	Title           string       `json:"title"`
	Message         string       `json:"message"`
	SenderID        string       `json:"sender_id"`
	RelatedQuestion *QuestionRef `json:"related_question"`
	RelatedAnswerID *string      `json:"related_answer_id"`
	IsRead          bool         `json:"is_read"`
	ReadAt          *time.Time   `json:"read_at"`
	CreatedAt       time.Time    `json:"created_at"`
}

type ListResponse struct {
	Notifications []Response      `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	Pagination    core.Pagination `json:"pagination"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type MarkAllReadResponse struct {
	UpdatedCount int `json:"updated_count"`
}

// Page is one page of a recipient's notifications.
type Page struct {
	Items       []Notification
	Total       int
	UnreadCount int
}

func ToResponse(n *Notification) Response {
	resp := Response{
		ID:              n.ID,
		Type:            n.Type,
		Title:           n.Title,
		Message:         n.Message,
		SenderID:        n.SenderID,
		RelatedAnswerID: n.RelatedAnswerID,
		IsRead:          n.IsRead,
		ReadAt:          n.ReadAt,
		CreatedAt:       n.CreatedAt,
	}
	if n.RelatedQuestionID != nil {
		ref := &QuestionRef{ID: *n.RelatedQuestionID}
		if n.RelatedQuestionTitle != nil {
			ref.Title = *n.RelatedQuestionTitle
		}
		resp.RelatedQuestion = ref
	}
	return resp
}

func ToResponses(items []Notification) []Response {
	out := make([]Response, 0, len(items))
	for i := range items {
		out = append(out, ToResponse(&items[i]))
	}
	return out
}
