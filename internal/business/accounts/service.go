// Package accounts manages staff users and login.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/acolhimento-gf/visitantes-api/internal/platform/logger"
	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/internal/session"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

const minPasswordLen = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already in use")
	ErrSelfDelete         = errors.New("cannot delete your own account")
	// ErrSessionRevoked is returned for a signed token whose user no longer exists.
	ErrSessionRevoked     = errors.New("session no longer valid")
)

// UserInput carries the writable fields of a user. Password is optional on update.
type UserInput struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// LoginResult is what the front end stores after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Nome      string    `json:"nome"`
	Landing   string    `json:"landing"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service handles credential checks and user CRUD.
type Service struct {
	users  repository.UserStore
	issuer *session.Issuer
	log    *logger.Logger
	cost   int
	now    func() time.Time
}

func NewService(users repository.UserStore, issuer *session.Issuer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		users:  users,
		issuer: issuer,
		log:    log,
		cost:   bcrypt.DefaultCost,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies the password and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("login rejected", "user_id", u.ID)
		return LoginResult{}, ErrInvalidCredentials
	}
	role, err := session.ParseRole(u.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	sess, err := s.issuer.Issue(u.ID, u.Nome, role)
	if err != nil {
		return LoginResult{}, err
	}
	s.log.Info("login", "user_id", u.ID, "role", role)
	return LoginResult{
		Token:     sess.Token,
		Role:      string(role),
		Nome:      u.Nome,
		Landing:   role.Landing(),
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Resolve checks a parsed session against the stored user. Deleted users are
// rejected and role or name changes apply to tokens issued before them.
func (s *Service) Resolve(ctx context.Context, sess *session.Session) (*session.Session, error) {
	u, err := s.users.Get(ctx, sess.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionRevoked
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	role, err := session.ParseRole(u.Role)
	if err != nil {
		s.log.Warn("session user has unknown role", "user_id", u.ID, "role", u.Role)
		return nil, ErrSessionRevoked
	}
	resolved := *sess
	resolved.Role = role
	resolved.Name = u.Nome
	return &resolved, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	return s.users.Get(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, in UserInput) (model.User, error) {
	in, role, err := validate(in, true)
	if err != nil {
		return model.User{}, err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return model.User{}, err
	}
	now := s.now()
	u := model.User{
		ID:           uuid.NewString(),
		Nome:         in.Nome,
		Email:        in.Email,
		Role:         string(role),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}
	s.log.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, in UserInput) (model.User, error) {
	in, role, err := validate(in, false)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if other, err := s.users.GetByEmail(ctx, in.Email); err == nil && other.ID != id {
		return model.User{}, ErrEmailTaken
	}

	u.Nome = in.Nome
	u.Email = in.Email
	u.Role = string(role)
	if in.Password != "" {
		if u.PasswordHash, err = s.hash(in.Password); err != nil {
			return model.User{}, err
		}
	}
	u.UpdatedAt = s.now()
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}
	return u, nil
}

// DeleteUser removes an account. actorID is the caller; nobody may delete themself.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", id, "by", actorID)
	return nil
}

// HashPassword is exposed for the seed command.
func (s *Service) HashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	return s.hash(password)
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func validate(in UserInput, creating bool) (UserInput, session.Role, error) {
	in.Nome = strings.TrimSpace(in.Nome)
	in.Email = normalizeEmail(in.Email)
	if in.Nome == "" {
		return in, "", fmt.Errorf("%w: nome is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return in, "", fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	role, err := session.ParseRole(in.Role)
	if err != nil {
		return in, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if (creating || in.Password != "") && len(in.Password) < minPasswordLen {
		return in, "", fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	return in, role, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
