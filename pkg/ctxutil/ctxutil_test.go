package ctxutil

import (
	"context"
	"testing"
)

func TestUserID_RoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)

	id, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected a user id")
	}
	if id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
}

func TestUserID_Missing(t *testing.T) {
	if _, ok := UserIDFromCtx(context.Background()); ok {
		t.Error("empty context must not yield a user id")
	}
}

func TestUserID_Zero(t *testing.T) {
	ctx := WithUserID(context.Background(), 0)
	if _, ok := UserIDFromCtx(ctx); ok {
		t.Error("zero user id is treated as absent")
	}
}
