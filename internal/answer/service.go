// AngelaMos | 2026
// service.go

package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/notification"
)

type Service struct {
	repo     Repository
	notifier notification.Notifier
}

// NewService builds the answer service. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func validBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) < MinBodyLength {
		return "", core.Invalid("answer must be at least %d characters", MinBodyLength)
	}
	return body, nil
}

// Create posts an answer, bumps the question's activity and notifies the
// question author.
func (s *Service) Create(ctx context.Context, actor access.Actor, req CreateRequest) (*View, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("create answer: %w", core.ErrUnauthorized)
	}
	if !actor.Can(access.PermPost) {
		return nil, core.ForbiddenError("your role cannot post answers")
	}

	body, err := validBody(req.Body)
	if err != nil {
		return nil, err
	}
	if !core.ValidID(req.QuestionID) {
		return nil, core.NotFoundError("question")
	}

	a := &Answer{
		ID:         core.NewID(),
		QuestionID: req.QuestionID,
		AuthorID:   actor.UserID,
		Body:       body,
	}

	var parent *Parent
	err = s.repo.WithinTx(ctx, func(repo Repository) error {
		var txErr error
		parent, txErr = repo.LockQuestion(ctx, a.QuestionID)
		if errors.Is(txErr, core.ErrNotFound) {
			return core.NotFoundError("question")
		}
		if txErr != nil {
			return txErr
		}
		if txErr = repo.Create(ctx, a); txErr != nil {
			return txErr
		}
		return repo.TouchQuestion(ctx, a.QuestionID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("answer created",
		"answer_id", a.ID,
		"question_id", a.QuestionID,
		"author_id", a.AuthorID,
	)

	s.notify(ctx, notification.Event{
		Recipient:  parent.AuthorID,
		Sender:     actor.UserID,
		Type:       notification.TypeAnswerPosted,
		Title:      "New answer to your question",
		Message:    fmt.Sprintf("%s answered your question %q", displayName(actor), parent.Title),
		QuestionID: parent.ID,
		AnswerID:   a.ID,
	})

	return s.repo.GetView(ctx, a.ID)
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id string, req UpdateRequest) (*View, error) {
	if !core.ValidID(id) {
		return nil, fmt.Errorf("update answer: %w", core.ErrNotFound)
	}

	body, err := validBody(req.Body)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(a.AuthorID) {
		return nil, core.ForbiddenError("you can only edit your own answers")
	}

	if err := s.repo.UpdateBody(ctx, id, body); err != nil {
		return nil, err
	}

	return s.repo.GetView(ctx, id)
}

// Delete soft-deletes an answer. Deleting the accepted answer clears the
// question's pointer in the same transaction.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id string) error {
	if !core.ValidID(id) {
		return fmt.Errorf("delete answer: %w", core.ErrNotFound)
	}

	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(a.AuthorID) {
		return core.ForbiddenError("you can only delete your own answers")
	}

	err = s.repo.WithinTx(ctx, func(repo Repository) error {
		parent, txErr := repo.LockQuestion(ctx, a.QuestionID)
		if txErr != nil {
			return txErr
		}
		if txErr = repo.SoftDelete(ctx, id); txErr != nil {
			return txErr
		}
		if parent.HasAccepted(id) {
			return repo.SetAcceptedPointer(ctx, parent.ID, nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("answer deleted", "answer_id", id, "by", actor.UserID)
	return nil
}

// Accept marks the answer as its question's accepted answer, clearing any
// other. Accepting the already accepted answer is a no-op.
func (s *Service) Accept(ctx context.Context, actor access.Actor, id string) (result *Acceptance, err error) {
	ctx, span := core.StartSpan(ctx, "answer.accept", attribute.String("answer.id", id))
	defer func() { core.EndSpan(span, err) }()

	a, parent, err := s.acceptance(ctx, actor, id, func(repo Repository, a *Answer, parent *Parent) (bool, error) {
		if parent.HasAccepted(a.ID) && a.IsAccepted {
			return false, nil
		}
		if err := repo.ClearAccepted(ctx, parent.ID); err != nil {
			return false, err
		}
		if err := repo.MarkAccepted(ctx, a.ID); err != nil {
			return false, err
		}
		if err := repo.SetAcceptedPointer(ctx, parent.ID, &a.ID); err != nil {
			return false, err
		}
		return true, repo.TouchQuestion(ctx, parent.ID)
	})
	if err != nil {
		return nil, err
	}

	result = &Acceptance{AnswerID: a.ID, QuestionID: parent.ID, Accepted: true, Changed: a.changed}
	if result.Changed {
		slog.Info("answer accepted", "answer_id", a.ID, "question_id", parent.ID)
	}
	if result.Changed && a.AuthorID != actor.UserID {
		s.notify(ctx, notification.Event{
			Recipient:  a.AuthorID,
			Sender:     actor.UserID,
			Type:       notification.TypeAnswerAccepted,
			Title:      "Your answer was accepted",
			Message:    fmt.Sprintf("%s accepted your answer to %q", displayName(actor), parent.Title),
			QuestionID: parent.ID,
			AnswerID:   a.ID,
		})
	}

	return result, nil
}

// Unaccept clears the accepted mark if this answer holds it.
func (s *Service) Unaccept(ctx context.Context, actor access.Actor, id string) (result *Acceptance, err error) {
	ctx, span := core.StartSpan(ctx, "answer.unaccept", attribute.String("answer.id", id))
	defer func() { core.EndSpan(span, err) }()

	a, parent, err := s.acceptance(ctx, actor, id, func(repo Repository, a *Answer, parent *Parent) (bool, error) {
		if !parent.HasAccepted(a.ID) && !a.IsAccepted {
			return false, nil
		}
		if err := repo.ClearAccepted(ctx, parent.ID); err != nil {
			return false, err
		}
		if err := repo.SetAcceptedPointer(ctx, parent.ID, nil); err != nil {
			return false, err
		}
		return true, repo.TouchQuestion(ctx, parent.ID)
	})
	if err != nil {
		return nil, err
	}

	if a.changed {
		slog.Info("answer unaccepted", "answer_id", a.ID, "question_id", parent.ID)
	}

	return &Acceptance{AnswerID: a.ID, QuestionID: parent.ID, Accepted: false, Changed: a.changed}, nil
}

type lockedAnswer struct {
	*Answer
	changed bool
}

// acceptance loads the answer, locks its question, checks the requester is
// the question author and runs mutate inside the lock.
func (s *Service) acceptance(
	ctx context.Context,
	actor access.Actor,
	id string,
	mutate func(repo Repository, a *Answer, parent *Parent) (bool, error),
) (*lockedAnswer, *Parent, error) {
	if actor.UserID == "" {
		return nil, nil, fmt.Errorf("accept answer: %w", core.ErrUnauthorized)
	}
	if !core.ValidID(id) {
		return nil, nil, core.NotFoundError("answer")
	}

	initial, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var (
		locked = &lockedAnswer{}
		parent *Parent
	)
	err = s.repo.WithinTx(ctx, func(repo Repository) error {
		var txErr error
		parent, txErr = repo.LockQuestion(ctx, initial.QuestionID)
		if txErr != nil {
			return txErr
		}
		if parent.AuthorID != actor.UserID {
			return core.ForbiddenError("only the question author can accept answers")
		}

		// Re-read under the lock so a concurrent delete is observed.
		current, txErr := repo.Get(ctx, id)
		if txErr != nil {
			return txErr
		}
		if current.QuestionID != parent.ID {
			return core.NotFoundError("answer")
		}

		locked.Answer = current
		locked.changed, txErr = mutate(repo, current, parent)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}

	return locked, parent, nil
}

func (s *Service) notify(ctx context.Context, ev notification.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, ev)
}

func displayName(actor access.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	return "Someone"
}
