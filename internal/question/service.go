// AngelaMos | 2026
// service.go

package question

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/vote"
)

// VoteLookup reports a user's existing votes.
type VoteLookup interface {
	UserVotes(ctx context.Context, userID string, kind vote.Kind, targetIDs []string) (map[string]vote.Direction, error)
}

type Service struct {
	repo  Repository
	votes VoteLookup
}

func NewService(repo Repository, votes VoteLookup) *Service {
	return &Service{repo: repo, votes: votes}
}

func (s *Service) Create(
	ctx context.Context,
	actor access.Actor,
	req CreateRequest,
) (*Summary, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("create question: %w", core.ErrUnauthorized)
	}
	if !actor.Can(access.PermPost) {
		return nil, core.ForbiddenError("your role cannot post questions")
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	tags := core.NormalizeTags(req.Tags)

	switch {
	case title == "" || body == "":
		return nil, core.Invalid("title and body are required")
	case len([]rune(title)) > 300:
		return nil, core.Invalid("title must be 300 characters or less")
	case len(tags) == 0:
		return nil, core.Invalid("at least one tag is required")
	}

	q := &Question{
		ID:       core.NewID(),
		Title:    title,
		Body:     body,
		Tags:     tags,
		AuthorID: actor.UserID,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}

	slog.Info("question created",
		"question_id", q.ID,
		"author_id", q.AuthorID,
		"tags", len(tags),
	)

	return s.repo.GetSummary(ctx, q.ID)
}

// Get loads a question page for viewer and records the view.
func (s *Service) Get(ctx context.Context, viewer access.Actor, id string) (*Detail, error) {
	if !core.ValidID(id) {
		return nil, fmt.Errorf("get question: %w", core.ErrNotFound)
	}

	summary, err := s.repo.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}

	counted, err := s.repo.RecordView(ctx, id, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if counted {
		summary.ViewCount++
	}

	answers, err := s.repo.ListAnswers(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{
		Summary:     *summary,
		Answers:     answers,
		AnswerVotes: map[string]string{},
	}

	if viewer.UserID == "" || s.votes == nil {
		return detail, nil
	}

	qVotes, err := s.votes.UserVotes(ctx, viewer.UserID, vote.KindQuestion, []string{id})
	if err != nil {
		return nil, err
	}
	detail.QuestionVote = string(qVotes[id])

	answerIDs := make([]string, 0, len(answers))
	for _, a := range answers {
		answerIDs = append(answerIDs, a.ID)
	}
	aVotes, err := s.votes.UserVotes(ctx, viewer.UserID, vote.KindAnswer, answerIDs)
	if err != nil {
		return nil, err
	}
	for answerID, dir := range aVotes {
		detail.AnswerVotes[answerID] = string(dir)
	}

	return detail, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Summary, int, error) {
	params.Sort = ParseSort(string(params.Sort))
	return s.repo.List(ctx, params)
}

// Delete soft-deletes a question and its answers. Only the author or a
// moderator may delete.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id string) error {
	if !core.ValidID(id) {
		return fmt.Errorf("delete question: %w", core.ErrNotFound)
	}

	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(q.AuthorID) {
		return core.ForbiddenError("you can only delete your own questions")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	slog.Info("question deleted", "question_id", id, "by", actor.UserID)
	return nil
}
