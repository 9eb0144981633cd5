package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/todolist/todolist/internal/auth"
	"github.com/todolist/todolist/internal/metrics"
	"github.com/todolist/todolist/internal/repository"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserStore, *fakeHasher, *metrics.InMemoryRecorder) {
	t.Helper()
	users := newFakeUserStore()
	hasher := &fakeHasher{}
	rec := metrics.NewInMemory()
	svc, err := NewAuthService(users, hasher, &fakeTokens{now: time.Now()}, 12, rec)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc, users, hasher, rec
}

func TestNewAuthService_RejectsNonPositiveExpiry(t *testing.T) {
	t.Parallel()

	for _, hours := range []int{0, -1} {
		if _, err := NewAuthService(newFakeUserStore(), &fakeHasher{}, &fakeTokens{}, hours, nil); err == nil {
			t.Errorf("expected error for expiry %d", hours)
		}
	}
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc, users, _, rec := newTestAuthService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "  ann ",
		Email:    " Ann@Example.COM ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("expected an ID")
	}
	if user.Email != "ann@example.com" {
		t.Errorf("Email = %q, want normalized", user.Email)
	}
	if user.Username != "ann" {
		t.Errorf("Username = %q, want trimmed", user.Username)
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Errorf("password not hashed: %q", user.PasswordHash)
	}
	if users.count() != 1 {
		t.Errorf("stored users = %d, want 1", users.count())
	}
	if rec.Snapshot().RegistrationsSucceeded != 1 {
		t.Error("registration success not recorded")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, users, hasher, rec := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	generatedBefore, _ := hasher.counts()

	_, err := svc.Register(ctx, RegisterInput{Username: "other", Email: "ANN@example.com", Password: "secret2"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("Register() error = %v, want ErrDuplicateUser", err)
	}

	generatedAfter, _ := hasher.counts()
	if generatedAfter != generatedBefore+1 {
		t.Errorf("duplicate path hashed %d times, want 1", generatedAfter-generatedBefore)
	}
	if users.count() != 1 {
		t.Errorf("stored users = %d, want 1", users.count())
	}
	if rec.Snapshot().RegistrationsFailed != 1 {
		t.Error("registration failure not recorded")
	}
}

func TestRegister_ConcurrentUniqueViolation(t *testing.T) {
	t.Parallel()

	svc, users, _, _ := newTestAuthService(t)
	users.createErr = repository.ErrEmailExists

	_, err := svc.Register(context.Background(), RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("Register() error = %v, want ErrDuplicateUser", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Username: " ", Email: "a@example.com", Password: "secret1"}, "username"},
		{"long username", RegisterInput{Username: strings.Repeat("u", 51), Email: "a@example.com", Password: "secret1"}, "username"},
		{"missing email", RegisterInput{Username: "a", Email: "", Password: "secret1"}, "email"},
		{"malformed email", RegisterInput{Username: "a", Email: "not-an-email", Password: "secret1"}, "email"},
		{"display name email", RegisterInput{Username: "a", Email: "Ann <a@example.com>", Password: "secret1"}, "email"},
		{"short password", RegisterInput{Username: "a", Email: "a@example.com", Password: "12345"}, "password"},
		{"long password", RegisterInput{Username: "a", Email: "a@example.com", Password: strings.Repeat("p", 25)}, "password"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, users, _, _ := newTestAuthService(t)

			_, err := svc.Register(context.Background(), tt.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Register() error = %v, want ErrInvalidInput", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("error field = %v, want %q", err, tt.field)
			}
			if users.count() != 0 {
				t.Error("failed registration must not store a user")
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc, _, _, rec := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(ctx, " ANN@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token != "token-for-"+user.ID {
		t.Errorf("Token = %q", result.Token)
	}
	if result.User.ID != user.ID {
		t.Errorf("User.ID = %q, want %q", result.User.ID, user.ID)
	}
	if rec.Snapshot().LoginsSucceeded != 1 {
		t.Error("login success not recorded")
	}
}

func TestLogin_UniformInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, _, hasher, rec := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, verifiedBefore := hasher.counts()
	_, unknownErr := svc.Login(ctx, "nobody@example.com", "secret1")
	_, verifiedAfter := hasher.counts()

	_, wrongErr := svc.Login(ctx, "ann@example.com", "wrong-password")

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("errors = %v / %v, want ErrInvalidCredentials", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("messages differ: %q vs %q", unknownErr, wrongErr)
	}
	if verifiedAfter != verifiedBefore+1 {
		t.Error("unknown email should still verify against the dummy hash")
	}
	if rec.Snapshot().LoginsFailed != 2 {
		t.Errorf("LoginsFailed = %d, want 2", rec.Snapshot().LoginsFailed)
	}
}

func TestLogin_StoreFailureIsNotInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, users, _, _ := newTestAuthService(t)
	users.lookupErr = errors.New("connection refused")

	_, err := svc.Login(context.Background(), "ann@example.com", "secret1")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want a store error", err)
	}
}

func TestLogin_WithRealHasherAndTokens(t *testing.T) {
	t.Parallel()

	hasher := auth.NewPasswordHasher(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1})
	tokens, err := auth.NewTokenProvider(testSecret, "todolist-test")
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}

	svc, err := NewAuthService(newFakeUserStore(), hasher, tokens, 12, nil)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Errorf("unexpected hash format %q", user.PasswordHash)
	}

	result, err := svc.Login(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := tokens.Parse(result.Token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, user.ID)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 12*time.Hour {
		t.Errorf("token lifetime = %v, want 12h", got)
	}

	if _, err := svc.Login(ctx, "ann@example.com", "secret2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
}
