package auth

import (
	"context"
	"errors"
	"testing"
)

func TestWithIdentity_IdentityFromCtx(t *testing.T) {
	want := Identity{Email: "mfg@x", Role: "MANUFACTURER"}
	ctx := WithIdentity(context.Background(), want)

	got, err := IdentityFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIdentityFromCtx_EmptyContext(t *testing.T) {
	_, err := IdentityFromCtx(context.Background())
	if !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestIdentityFromCtx_EmptyEmail(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{Role: "ADMIN"})
	if _, err := IdentityFromCtx(ctx); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound for empty email, got %v", err)
	}
}

func TestIdentityFromCtx_Isolation(t *testing.T) {
	ctx1 := WithIdentity(context.Background(), Identity{Email: "a@x", Role: "PHARMACY"})
	ctx2 := WithIdentity(context.Background(), Identity{Email: "b@y", Role: "DISTRIBUTOR"})

	got1, _ := IdentityFromCtx(ctx1)
	got2, _ := IdentityFromCtx(ctx2)

	if got1.Email != "a@x" || got2.Email != "b@y" {
		t.Fatalf("contexts leaked identities: %v %v", got1, got2)
	}
}
