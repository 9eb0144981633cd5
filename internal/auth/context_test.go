package auth

import (
	"context"
	"testing"

	"github.com/todolist/todolist/internal/model"
)

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if PrincipalFromContext(ctx) != nil {
		t.Fatal("expected nil principal on empty context")
	}
	if UserIDFromContext(ctx) != "" {
		t.Fatal("expected empty user ID on empty context")
	}

	ctx = ContextWithPrincipal(ctx, &model.Principal{UserID: "u-1"})
	if got := UserIDFromContext(ctx); got != "u-1" {
		t.Errorf("UserIDFromContext = %q, want u-1", got)
	}
}
