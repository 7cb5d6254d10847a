package service

import (
	"errors"
	"testing"

	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
)

func TestApiKeysFollowCapabilities(t *testing.T) {
	env := newTestEnv(t, wednesday)
	svc := NewApiKeyService(repository.NewApiKeyRepository(env.db))

	if _, err := svc.Create(env.ctx, subscriber); !errors.Is(err, ErrForbidden) {
		t.Fatalf("subscriber Create = %v, want ErrForbidden", err)
	}
	if _, err := svc.Create(env.ctx, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous Create = %v, want ErrForbidden", err)
	}

	key, err := svc.Create(env.ctx, author)
	if err != nil || len(key) != apiKeyLength {
		t.Fatalf("Create = %q, %v", key, err)
	}
	if id, err := svc.GetUserID(env.ctx, key); err != nil || id != author.ID {
		t.Fatalf("GetUserID = %d, %v", id, err)
	}
	if _, err := svc.GetUserID(env.ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("GetUserID(missing) = %v", err)
	}

	keys, err := svc.List(env.ctx, author)
	if err != nil || len(keys) != 1 {
		t.Fatalf("List = %v, %v", keys, err)
	}
	keyID := keys[0].ID

	// Another author cannot revoke it; an administrator can.
	other := &models.User{ID: 9, Role: models.RoleAuthor}
	if err := svc.RemoveAPIKey(env.ctx, other, keyID); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("foreign RemoveAPIKey = %v", err)
	}
	if err := svc.RemoveAPIKey(env.ctx, admin, keyID); err != nil {
		t.Fatalf("admin RemoveAPIKey = %v", err)
	}
	if _, err := svc.GetUserID(env.ctx, key); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("revoked key still resolves: %v", err)
	}
}

func TestApiKeyLimit(t *testing.T) {
	env := newTestEnv(t, wednesday)
	svc := NewApiKeyService(repository.NewApiKeyRepository(env.db))

	for i := 0; i < maxApiKeys; i++ {
		if _, err := svc.Create(env.ctx, admin); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	if _, err := svc.Create(env.ctx, admin); err == nil {
		t.Fatal("created more keys than allowed")
	}
}
