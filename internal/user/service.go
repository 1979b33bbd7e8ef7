// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/auth"
	"github.com/carterperez-dev/stackit/internal/config"
	"github.com/carterperez-dev/stackit/internal/core"
)

const defaultFirstName = "User"

type Service struct {
	repo     Repository
	identity config.IdentityConfig
}

func NewService(repo Repository, identity config.IdentityConfig) *Service {
	return &Service{repo: repo, identity: identity}
}

// ResolvePrincipal returns the local actor for an identity provider
// principal, creating the user on first sight. Allow-listed emails are
// escalated to admin on every load. Roles are never downgraded here.
func (s *Service) ResolvePrincipal(
	ctx context.Context,
	p auth.Principal,
) (access.Actor, error) {
	u, err := s.repo.GetByExternalID(ctx, p.Subject)
	if errors.Is(err, core.ErrNotFound) {
		u, err = s.create(ctx, p)
	}
	if err != nil {
		return access.Actor{}, fmt.Errorf("resolve principal: %w", err)
	}

	if !u.IsActive {
		return access.Actor{}, core.ForbiddenError("account is deactivated")
	}

	if s.identity.IsAdminEmail(u.Email) && !u.IsAdmin() {
		u, err = s.repo.UpdateRole(ctx, u.ID, access.RoleAdmin)
		if err != nil {
			return access.Actor{}, fmt.Errorf("resolve principal: %w", err)
		}
		slog.Info("user promoted to admin", "user_id", u.ID, "email", u.Email)
	}

	return u.Actor(), nil
}

func (s *Service) create(ctx context.Context, p auth.Principal) (*User, error) {
	role := access.RoleUser
	if s.identity.IsAdminEmail(p.Email) {
		role = access.RoleAdmin
	}

	firstName := strings.TrimSpace(p.FirstName)
	if firstName == "" {
		firstName = defaultFirstName
	}

	u := &User{
		ID:         uuid.New().String(),
		ExternalID: p.Subject,
		Email:      strings.ToLower(p.Email),
		FirstName:  firstName,
		LastName:   strings.TrimSpace(p.LastName),
		Role:       role,
	}
	if name := strings.TrimSpace(p.Username); name != "" {
		u.Username = &name
	}

	err := s.repo.Create(ctx, u)
	if errors.Is(err, core.ErrDuplicateKey) {
		// A concurrent first request may have created the row already.
		existing, getErr := s.repo.GetByExternalID(ctx, p.Subject)
		if getErr == nil {
			return existing, nil
		}
		return nil, core.ConflictError("email or username is already linked to another account")
	}
	if err != nil {
		return nil, err
	}

	slog.Info("user created from identity provider",
		"user_id", u.ID,
		"role", u.Role,
	)
	return u, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("get profile: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountContent(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: u, Counts: counts}, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Bio != nil {
		u.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Location != nil {
		u.Location = strings.TrimSpace(*req.Location)
	}
	if req.Website != nil {
		website := strings.TrimSpace(*req.Website)
		if website != "" && !isHTTPURL(website) {
			return nil, core.Invalid("website must be a valid URL starting with http:// or https://")
		}
		u.Website = website
	}
	if req.WatchedTags != nil {
		u.WatchedTags = core.NormalizeTags(req.WatchedTags)
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountContent(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: u, Counts: counts}, nil
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	for _, prefix := range []string{"http://", "https://"} {
		if strings.HasPrefix(lower, prefix) && len(s) > len(prefix) {
			return true
		}
	}
	return false
}

// GetPublicProfile returns an active user's profile with one page each of
// their questions and answers.
func (s *Service) GetPublicProfile(
	ctx context.Context,
	id string,
	questionPage, answerPage core.Page,
) (*PublicProfile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("get public profile: %w", core.ErrNotFound)
	}

	counts, err := s.repo.CountContent(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.ListQuestionSummaries(ctx, id, questionPage)
	if err != nil {
		return nil, err
	}

	answers, err := s.repo.ListAnswerSummaries(ctx, id, answerPage)
	if err != nil {
		return nil, err
	}

	return &PublicProfile{
		Profile:   Profile{User: u, Counts: counts},
		Questions: questions,
		Answers:   answers,
	}, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	if params.Role != "" {
		if _, err := access.ParseRole(params.Role); err != nil {
			return nil, 0, core.Invalid("role must be guest, user or admin")
		}
	}
	return s.repo.List(ctx, params)
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	actor access.Actor,
	id, role string,
) (*User, error) {
	parsed, err := access.ParseRole(role)
	if err != nil {
		return nil, core.Invalid("role must be guest, user or admin")
	}

	if actor.UserID == id && parsed != access.RoleAdmin {
		return nil, core.ForbiddenError("admins cannot remove their own admin role")
	}

	u, err := s.repo.UpdateRole(ctx, id, parsed)
	if err != nil {
		return nil, err
	}

	slog.Info("user role updated",
		"user_id", u.ID,
		"role", u.Role,
		"by", actor.UserID,
	)
	return u, nil
}
