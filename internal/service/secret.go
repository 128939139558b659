package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/secure"
)

// SigningSecretKey is the storage key of the generated token signing secret.
const SigningSecretKey = "briefdesk_jwt_secret"

// ResolveSigningSecret returns configured when it is set. Otherwise it loads
// the secret kept in kv, generating and storing one on first use, so tokens
// survive restarts without any configuration.
func ResolveSigningSecret(ctx context.Context, kv config.KV, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	secret, err := kv.Get(ctx, SigningSecretKey)
	if err == nil && secret != "" {
		return secret, nil
	}
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return "", fmt.Errorf("load signing secret: %w", err)
	}

	secret, err = secure.GenerateSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate signing secret: %w", err)
	}
	if err := kv.Set(ctx, SigningSecretKey, secret); err != nil {
		return "", fmt.Errorf("store signing secret: %w", err)
	}
	return secret, nil
}
