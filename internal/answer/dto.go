// AngelaMos | 2026
// dto.go

package answer

import (
	"time"
)

type CreateRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Body       string `json:"body"        validate:"required,max=30000"`
}

type UpdateRequest struct {
	Body string `json:"body" validate:"required,max=30000"`
}

type AuthorResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Username   *string `json:"username"`
	Reputation int     `json:"reputation"`
}

type Response struct {
	ID         string         `json:"id"`
	QuestionID string         `json:"question_id"`
	Body       string         `json:"body"`
	Author     AuthorResponse `json:"author"`
	VoteScore  int            `json:"vote_score"`
	IsAccepted bool           `json:"is_accepted"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type AcceptResponse struct {
	AnswerID   string `json:"answer_id"`
	QuestionID string `json:"question_id"`
	IsAccepted bool   `json:"is_accepted"`
	Changed    bool   `json:"changed"`
}

func ToResponse(v *View) Response {
	return Response{
		ID:         v.ID,
		QuestionID: v.QuestionID,
		Body:       v.Body,
		Author: AuthorResponse{
			ID:         v.AuthorID,
			Name:       v.AuthorName(),
			Username:   v.AuthorUsername,
			Reputation: v.AuthorReputation,
		},
		VoteScore:  v.VoteScore,
		IsAccepted: v.IsAccepted,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func ToAcceptResponse(a *Acceptance) AcceptResponse {
	return AcceptResponse{
		AnswerID:   a.AnswerID,
		QuestionID: a.QuestionID,
		IsAccepted: a.Accepted,
		Changed:    a.Changed,
	}
}
