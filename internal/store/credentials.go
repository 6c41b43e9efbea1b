package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	CredentialKey       = "AI_API_KEY"
	LegacyCredentialKey = "GEMINI_API_KEY"

	minCredentialLen = 10
)

// ErrInvalidCredential is returned for keys that are too short to be real.
var ErrInvalidCredential = errors.New("API key must be longer than 10 characters")

// Credentials stores the inference API key.
type Credentials struct {
	kv KV
}

func NewCredentials(kv KV) *Credentials {
	return &Credentials{kv: kv}
}

// Get returns the stored key, falling back to the legacy slot.
// Returns "" when neither is set.
func (c *Credentials) Get(ctx context.Context) (string, error) {
	v, err := c.kv.Get(ctx, CredentialKey)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	if v != "" {
		return v, nil
	}
	v, err = c.kv.Get(ctx, LegacyCredentialKey)
	if err != nil {
		return "", fmt.Errorf("read legacy credential: %w", err)
	}
	return v, nil
}

// ValidateCredential trims key and checks it is long enough to be real.
func ValidateCredential(key string) (string, error) {
	key = strings.TrimSpace(key)
	if len(key) <= minCredentialLen {
		return "", ErrInvalidCredential
	}
	return key, nil
}

// Save trims and stores key under the primary slot and clears the legacy one.
func (c *Credentials) Save(ctx context.Context, key string) error {
	key, err := ValidateCredential(key)
	if err != nil {
		return err
	}
	if err := c.kv.Set(ctx, CredentialKey, key); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	if err := c.kv.Delete(ctx, LegacyCredentialKey); err != nil {
		return fmt.Errorf("clear legacy credential: %w", err)
	}
	return nil
}

// Clear removes both slots.
func (c *Credentials) Clear(ctx context.Context) error {
	for _, k := range []string{CredentialKey, LegacyCredentialKey} {
		if err := c.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("clear credential: %w", err)
		}
	}
	return nil
}

// Mask shows only the ends of a key.
func Mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
