package service

import (
	"context"
	"testing"

	"github.com/briefdesk/briefdesk/internal/config"
)

func TestResolveSigningSecret(t *testing.T) {
	store, err := config.NewStore("")
	if err != nil {
		t.Fatalf("config.NewStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	got, err := ResolveSigningSecret(ctx, store, "configured")
	if err != nil || got != "configured" {
		t.Fatalf("configured secret = %q, %v", got, err)
	}

	first, err := ResolveSigningSecret(ctx, store, "")
	if err != nil {
		t.Fatalf("ResolveSigningSecret: %v", err)
	}
	if first == "" {
		t.Fatal("expected generated secret")
	}

	second, err := ResolveSigningSecret(ctx, store, "")
	if err != nil {
		t.Fatalf("second ResolveSigningSecret: %v", err)
	}
	if second != first {
		t.Errorf("secret changed between calls: %q != %q", first, second)
	}
}
