package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/pkg/utils"
)

const (
	maxApiKeys   = 5
	apiKeyLength = 32
)

var ErrKeyNotFound = errors.New("api key not found")

// ApiKeyService manages the keys scripts use instead of a session cookie.
// A key acts with its owner's current role, so only users who can edit
// posts may mint one, and administrators may revoke anyone's key.
type ApiKeyService interface {
	Create(ctx context.Context, user *models.User) (string, error)
	List(ctx context.Context, user *models.User) ([]*models.ApiKey, error)
	GetUserID(ctx context.Context, apiKey string) (int64, error)
	RemoveAPIKey(ctx context.Context, user *models.User, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{
		k: k,
	}
}

func (s *apiKeyService) Create(ctx context.Context, user *models.User) (string, error) {
	if !user.Can(models.CapEditPosts) {
		return "", ErrForbidden
	}

	keys, err := s.k.GetByUserID(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if len(keys) >= maxApiKeys {
		err = fmt.Errorf("only %d API keys can be created", maxApiKeys)
		slog.Info(err.Error())
		return "", err
	}

	key, err := utils.GenerateRandomKey(apiKeyLength)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("generate api key: %w", err)
	}

	if _, err := s.k.Create(ctx, &models.ApiKey{UserID: user.ID, ApiKey: key}); err != nil {
		return "", fmt.Errorf("save api key: %w", err)
	}
	slog.Info("api key created", "user_id", user.ID, "role", user.Role)
	return key, nil
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	userID, ok, err := s.k.GetByKey(ctx, apiKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrKeyNotFound
	}
	return userID, nil
}

func (s *apiKeyService) List(ctx context.Context, user *models.User) ([]*models.ApiKey, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	return s.k.GetByUserID(ctx, user.ID)
}

func (s *apiKeyService) RemoveAPIKey(ctx context.Context, user *models.User, keyID int64) error {
	if user == nil {
		return ErrForbidden
	}
	if keyID <= 0 {
		return ErrKeyNotFound
	}

	if !user.Can(models.CapManageOptions) {
		owned, err := s.k.CheckByUserID(ctx, keyID, user.ID)
		if err != nil {
			return err
		}
		if !owned {
			return ErrKeyNotFound
		}
	}

	return s.k.Remove(ctx, keyID)
}
