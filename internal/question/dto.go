// AngelaMos | 2026
// dto.go

package question

import (
	"time"

	"github.com/carterperez-dev/stackit/internal/core"
)

type CreateRequest struct {
	Title string   `json:"title" validate:"required,max=300"`
	Body  string   `json:"body"  validate:"required,max=30000"`
	Tags  []string `json:"tags"  validate:"required,min=1,max=10,dive,max=30"`
}

type AuthorResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Username   *string `json:"username"`
	Reputation int     `json:"reputation"`
}

type SummaryResponse struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Body              string         `json:"body"`
	Tags              []string       `json:"tags"`
	Author            AuthorResponse `json:"author"`
	VoteScore         int            `json:"vote_score"`
	AnswerCount       int            `json:"answer_count"`
	ViewCount         int            `json:"view_count"`
	AcceptedAnswerID  *string        `json:"accepted_answer_id"`
	HasAcceptedAnswer bool           `json:"has_accepted_answer"`
	CreatedAt         time.Time      `json:"created_at"`
	LastActivity      time.Time      `json:"last_activity"`
}

type AnswerResponse struct {
	ID         string         `json:"id"`
	Body       string         `json:"body"`
	Author     AuthorResponse `json:"author"`
	VoteScore  int            `json:"vote_score"`
	IsAccepted bool           `json:"is_accepted"`
	UserVote   *string        `json:"user_vote"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type DetailResponse struct {
	SummaryResponse
	UserVote *string          `json:"user_vote"`
	Answers  []AnswerResponse `json:"answers"`
}

type ListResponse struct {
	Questions  []SummaryResponse `json:"questions"`
	Pagination core.Pagination   `json:"pagination"`
}

func toAuthor(a Author) AuthorResponse {
	return AuthorResponse{
		ID:         a.AuthorID,
		Name:       a.Name(),
		Username:   a.Username,
		Reputation: a.Reputation,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ToSummaryResponse(s *Summary) SummaryResponse {
	tags := []string(s.Tags)
	if tags == nil {
		tags = []string{}
	}

	return SummaryResponse{
		ID:                s.ID,
		Title:             s.Title,
		Body:              s.Body,
		Tags:              tags,
		Author:            toAuthor(s.Author),
		VoteScore:         s.VoteScore,
		AnswerCount:       s.AnswerCount,
		ViewCount:         s.ViewCount,
		AcceptedAnswerID:  s.AcceptedAnswerID,
		HasAcceptedAnswer: s.AcceptedAnswerID != nil,
		CreatedAt:         s.CreatedAt,
		LastActivity:      s.LastActivity,
	}
}

func ToSummaryResponses(items []Summary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(items))
	for i := range items {
		out = append(out, ToSummaryResponse(&items[i]))
	}
	return out
}

func ToDetailResponse(d *Detail) DetailResponse {
	answers := make([]AnswerResponse, 0, len(d.Answers))
	for _, a := range d.Answers {
		answers = append(answers, AnswerResponse{
			ID:         a.ID,
			Body:       a.Body,
			Author:     toAuthor(a.Author),
			VoteScore:  a.VoteScore,
			IsAccepted: a.IsAccepted,
			UserVote:   optional(d.AnswerVotes[a.ID]),
			CreatedAt:  a.CreatedAt,
			UpdatedAt:  a.UpdatedAt,
		})
	}

	return DetailResponse{
		SummaryResponse: ToSummaryResponse(&d.Summary),
		UserVote:        optional(d.QuestionVote),
		Answers:         answers,
	}
}
