// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/stackit/internal/core"
)

type UpdateProfileRequest struct {
	Bio         *string  `json:"bio,omitempty"          validate:"omitempty,max=500"`
	Location    *string  `json:"location,omitempty"     validate:"omitempty,max=100"`
	Website     *string  `json:"website,omitempty"      validate:"omitempty,max=200"`
	WatchedTags []string `json:"watched_tags,omitempty" validate:"omitempty,max=20,dive,max=30"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=guest user admin"`
}

type ProfileResponse struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Username      *string   `json:"username"`
	Email         string    `json:"email,omitempty"`
	Role          string    `json:"role"`
	Reputation    int       `json:"reputation"`
	Bio           string    `json:"bio"`
	Location      string    `json:"location"`
	Website       string    `json:"website"`
	WatchedTags   []string  `json:"watched_tags,omitempty"`
	QuestionCount int       `json:"question_count"`
	AnswerCount   int       `json:"answer_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type QuestionSummaryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Tags        []string  `json:"tags"`
	VoteScore   int       `json:"vote_score"`
	AnswerCount int       `json:"answer_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type AnswerSummaryResponse struct {
	ID         string          `json:"id"`
	Excerpt    string          `json:"excerpt"`
	VoteScore  int             `json:"vote_score"`
	IsAccepted bool            `json:"is_accepted"`
	Question   QuestionRefResp `json:"question"`
	CreatedAt  time.Time       `json:"created_at"`
}

type QuestionRefResp struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type PublicProfileResponse struct {
	User      ProfileResponse           `json:"user"`
	Questions []QuestionSummaryResponse `json:"questions"`
	Answers   []AnswerSummaryResponse   `json:"answers"`
}

type UserListItem struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Username   *string   `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Reputation int       `json:"reputation"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users      []UserListItem  `json:"users"`
	Pagination core.Pagination `json:"pagination"`
}

type ListUsersParams struct {
	Page   core.Page
	Search string
	Role   string
}

// Profile is a user with their content counts.
type Profile struct {
	User   *User
	Counts ContentCounts
}

type PublicProfile struct {
	Profile
	Questions []QuestionSummary
	Answers   []AnswerSummary
}

func ToProfileResponse(p *Profile, includePrivate bool) ProfileResponse {
	u := p.User
	resp := ProfileResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Username:      u.Username,
		Role:          string(u.Role),
		Reputation:    u.Reputation,
		Bio:           u.Bio,
		Location:      u.Location,
		Website:       u.Website,
		QuestionCount: p.Counts.Questions,
		AnswerCount:   p.Counts.Answers,
		CreatedAt:     u.CreatedAt,
	}
	if includePrivate {
		resp.Email = u.Email
		resp.WatchedTags = nonNil(u.WatchedTags)
	}
	return resp
}

func ToPublicProfileResponse(p *PublicProfile) PublicProfileResponse {
	questions := make([]QuestionSummaryResponse, 0, len(p.Questions))
	for _, q := range p.Questions {
		questions = append(questions, QuestionSummaryResponse{
			ID:          q.ID,
			Title:       q.Title,
			Tags:        nonNil(q.Tags),
			VoteScore:   q.VoteScore,
			AnswerCount: q.AnswerCount,
			CreatedAt:   q.CreatedAt,
		})
	}

	answers := make([]AnswerSummaryResponse, 0, len(p.Answers))
	for _, a := range p.Answers {
		answers = append(answers, AnswerSummaryResponse{
			ID:         a.ID,
			Excerpt:    a.Excerpt,
			VoteScore:  a.VoteScore,
			IsAccepted: a.IsAccepted,
			Question:   QuestionRefResp{ID: a.QuestionID, Title: a.QuestionTitle},
			CreatedAt:  a.CreatedAt,
		})
	}

	return PublicProfileResponse{
		User:      ToProfileResponse(&p.Profile, false),
		Questions: questions,
		Answers:   answers,
	}
}

func ToUserListItems(users []User) []UserListItem {
	items := make([]UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, UserListItem{
			ID:         u.ID,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Username:   u.Username,
			Email:      u.Email,
			Role:       string(u.Role),
			Reputation: u.Reputation,
			IsActive:   u.IsActive,
			CreatedAt:  u.CreatedAt,
		})
	}
	return items
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
