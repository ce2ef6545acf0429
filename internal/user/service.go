package user

import (
	"context"
	"errors"
	"log/slog"
)

// ErrBlacklisted indicates the identity failed the blacklist screen and
// cannot be onboarded or signed in.
var ErrBlacklisted = errors.New("user is blacklisted")

// BlacklistChecker screens an identity against an external blacklist.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, identity string) (bool, error)
}

// Service manages user onboarding and login lookup.
type Service struct {
	repo      Repository
	blacklist BlacklistChecker
	logger    *slog.Logger
}

// NewService creates a new user service. The blacklist checker may be nil,
// in which case screening is skipped.
func NewService(repo Repository, blacklist BlacklistChecker, logger *slog.Logger) *Service {
	return &Service{repo: repo, blacklist: blacklist, logger: logger}
}

// Register screens the identity and creates the user. The blacklist check
// fails open: a lookup error never blocks onboarding.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if s.blacklist != nil {
		listed, err := s.blacklist.IsBlacklisted(ctx, input.Email)
		if err != nil {
			s.logger.Warn("blacklist check failed, proceeding",
				slog.String("email", input.Email),
				slog.Any("error", err),
			)
		} else if listed {
			return User{}, ErrBlacklisted
		}
	}

	u, err := s.repo.Create(ctx, User{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	})
	if err != nil {
		return User{}, err
	}

	s.logger.Info("user registered", slog.Int64("user_id", u.ID))
	return u, nil
}

// Login looks up the user by email. Login is password-less; transport-level
// rate limiting guards against enumeration.
func (s *Service) Login(ctx context.Context, email string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if u.IsBlacklisted {
		return User{}, ErrBlacklisted
	}
	return u, nil
}

// GetByID fetches a user by id.
func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}
