package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/pkg/helpers"
)

const minPasswordLen = 8

type UserService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

// Token is a signed bearer token and its expiry.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

func NewUserService(repo repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, JWT: jwt, Logger: logger}
}

// Register creates a regular user account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	return s.CreateUser(ctx, in, entity.RoleUser)
}

// CreateUser creates an account with the given role. Used by Register and by
// the admin seeding command.
func (s *UserService) CreateUser(ctx context.Context, in RegisterInput, role entity.UserRole) (*entity.User, error) {
	if len(in.Password) < minPasswordLen {
		return nil, invalidInput("password", fmt.Sprintf("must be at least %d characters long", minPasswordLen))
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taken, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.Repo.UsernameExists(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := entity.NewUser(email, in.Username, hash, role, in.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	}
	return u, nil
}

// Authenticate validates username/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

func (s *UserService) IssueToken(u *entity.User) (Token, error) {
	access, exp, err := s.JWT.GenerateAccessToken(u.ID.String(), string(u.Role))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return Token{}, err
	}
	return Token{AccessToken: access, TokenType: "bearer", ExpiresAt: exp}, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*entity.User, Token, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, Token{}, err
	}
	tok, err := s.IssueToken(u)
	if err != nil {
		return nil, Token{}, err
	}
	return u, tok, nil
}

// UserFromToken verifies a bearer token and loads the active user it names.
func (s *UserService) UserFromToken(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateSettings changes the user's preferred language.
func (s *UserService) UpdateSettings(ctx context.Context, userID uuid.UUID, language string) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := u.Settings.WithLanguage(strings.ToLower(strings.TrimSpace(language)))
	if err != nil {
		return nil, err
	}
	u.UpdateSettings(settings)
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, page repo.Page) ([]*entity.User, int64, error) {
	users, err := s.Repo.GetAll(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
