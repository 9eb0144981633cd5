package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/todolist/todolist/internal/metrics"
	"github.com/todolist/todolist/internal/model"
	"github.com/todolist/todolist/internal/repository"
)

// dummyPassword is hashed once at startup. Logins for unknown emails verify
// against it so they take as long as logins for known ones.
const dummyPassword = "not-a-real-password"

// AuthService handles registration and login.
type AuthService struct {
	users       UserStore
	hasher      PasswordHasher
	tokens      TokenIssuer
	expiryHours int
	dummyHash   string
	metrics     metrics.Recorder
	now         func() time.Time
}

// NewAuthService creates a new AuthService. expiryHours is the lifetime of issued tokens.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, expiryHours int, recorder metrics.Recorder) (*AuthService, error) {
	if expiryHours <= 0 {
		return nil, fmt.Errorf("token expiry must be positive, got %d", expiryHours)
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	dummyHash, err := hasher.Generate(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		expiryHours: expiryHours,
		dummyHash:   dummyHash,
		metrics:     recorder,
		now:         time.Now,
	}, nil
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a user. No token is issued; the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	user, err := s.register(ctx, input)
	if err != nil {
		s.metrics.IncRegistration(metrics.StatusFailed)
		return nil, err
	}
	s.metrics.IncRegistration(metrics.StatusSuccess)
	return user, nil
}

func (s *AuthService) register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := NormalizeEmail(input.Email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", input.Password); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		// Spend the same hashing work as a successful registration.
		_, _ = s.hasher.Generate(input.Password)
		return nil, ErrDuplicateUser
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Generate(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           newID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// Login checks credentials and issues a token. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	result, err := s.login(ctx, email, password)
	if err != nil {
		s.metrics.IncLogin(metrics.StatusFailed)
		return nil, err
	}
	s.metrics.IncLogin(metrics.StatusSuccess)
	return result, nil
}

func (s *AuthService) login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, s.expiryHours)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
