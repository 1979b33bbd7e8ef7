// AngelaMos | 2026
// service.go

package vote

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/notification"
)

// Result is the state of a target after a vote was cast.
type Result struct {
	Score    int
	Vote     Direction
	Previous Direction
	Action   Action
}

type Service struct {
	repo     Repository
	notifier notification.Notifier
}

// NewService builds the vote ledger. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Cast records the actor's vote on a question or answer with toggle
// semantics. All validation happens before anything is written, and the
// read-modify-write runs under a row lock on the target.
func (s *Service) Cast(
	ctx context.Context,
	actor access.Actor,
	kind Kind,
	targetID string,
	direction string,
) (result *Result, err error) {
	ctx, span := core.StartSpan(ctx, "vote.cast",
		attribute.String("vote.kind", string(kind)),
		attribute.String("vote.target_id", targetID),
	)
	defer func() { core.EndSpan(span, err) }()

	dir, err := ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	if actor.UserID == "" {
		return nil, fmt.Errorf("cast vote: %w", core.ErrUnauthorized)
	}
	if !actor.Can(access.PermVote) {
		return nil, core.ForbiddenError("your role cannot vote")
	}
	if kind != KindQuestion && kind != KindAnswer {
		return nil, fmt.Errorf("cast vote: unknown kind %q", kind)
	}
	if !core.ValidID(targetID) {
		return nil, fmt.Errorf("cast vote: %w", core.ErrNotFound)
	}

	var target *Target
	err = s.repo.WithinTx(ctx, func(repo Repository) error {
		var txErr error
		target, txErr = repo.LockTarget(ctx, kind, targetID)
		if txErr != nil {
			return txErr
		}
		if target.AuthorID == actor.UserID {
			return core.ForbiddenError(fmt.Sprintf("you cannot vote on your own %s", kind))
		}

		previous, txErr := repo.GetVote(ctx, kind, targetID, actor.UserID)
		if txErr != nil {
			return txErr
		}

		next, action, _ := Resolve(previous, dir)
		if next == None {
			txErr = repo.DeleteVote(ctx, kind, targetID, actor.UserID)
		} else {
			txErr = repo.PutVote(ctx, kind, targetID, actor.UserID, next)
		}
		if txErr != nil {
			return txErr
		}

		if txErr = repo.TouchActivity(ctx, kind, targetID); txErr != nil {
			return txErr
		}

		score, txErr := repo.Score(ctx, kind, targetID)
		if txErr != nil {
			return txErr
		}

		result = &Result{Score: score, Vote: next, Previous: previous, Action: action}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("vote cast",
		"kind", kind,
		"target_id", targetID,
		"user_id", actor.UserID,
		"action", result.Action,
		"score", result.Score,
	)

	if result.Action != ActionRemoved {
		s.notify(ctx, actor, target, dir)
	}

	return result, nil
}

func (s *Service) notify(ctx context.Context, actor access.Actor, target *Target, dir Direction) {
	if s.notifier == nil {
		return
	}

	name := actor.Name
	if name == "" {
		name = "Someone"
	}

	ev := notification.Event{
		Recipient:  target.AuthorID,
		Sender:     actor.UserID,
		QuestionID: target.QuestionID,
	}

	switch target.Kind {
	case KindQuestion:
		ev.Type = notification.TypeQuestionVoted
		ev.Title = fmt.Sprintf("Your question received a %svote", dir)
		ev.Message = fmt.Sprintf("%s %svoted your question %q", name, dir, target.QuestionTitle)
	case KindAnswer:
		ev.Type = notification.TypeAnswerVoted
		ev.AnswerID = target.ID
		ev.Title = fmt.Sprintf("Your answer received a %svote", dir)
		ev.Message = fmt.Sprintf("%s %svoted your answer on %q", name, dir, target.QuestionTitle)
	}

	s.notifier.Notify(ctx, ev)
}

// UserVotes returns the actor's directions on the given targets. Guests
// get an empty map.
func (s *Service) UserVotes(
	ctx context.Context,
	userID string,
	kind Kind,
	targetIDs []string,
) (map[string]Direction, error) {
	if userID == "" {
		return map[string]Direction{}, nil
	}
	return s.repo.UserVotes(ctx, kind, userID, targetIDs)
}
