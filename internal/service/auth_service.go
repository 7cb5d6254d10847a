package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

type AuthService interface {
	AuthCodeURL(state string) (string, error)
	LoginCallback(ctx context.Context, code string) (int64, error)
}

// UserInfoFetcher resolves the Google profile behind an authorised client.
type UserInfoFetcher func(ctx context.Context, client *http.Client) (*transfer.GoogleUserInfo, error)

type authService struct {
	cfg      config.Config
	u        repository.UserRepository
	userInfo UserInfoFetcher
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg:      cfg,
		u:        u,
		userInfo: GetUserInfo,
	}
}

func (s *authService) oauth2Config() (*oauth2.Config, error) {
	oauth2Config := &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes:       []string{oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
		Endpoint:     google.Endpoint,
	}

	if oauth2Config.ClientID == "" || oauth2Config.ClientSecret == "" || oauth2Config.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return nil, err
	}
	return oauth2Config, nil
}

func (s *authService) AuthCodeURL(state string) (string, error) {
	oauth2Config, err := s.oauth2Config()
	if err != nil {
		return "", err
	}
	return oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

func (s *authService) LoginCallback(ctx context.Context, code string) (int64, error) {

	if code == "" {
		err := errors.New("code or state is empty")
		slog.Info(err.Error())
		return 0, err
	}

	oauth2Config, err := s.oauth2Config()
	if err != nil {
		return 0, err
	}

	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	userInfo, err := s.userInfo(ctx, oauth2Config.Client(ctx, token))
	if err != nil {
		return 0, err
	}

	return s.upsertUser(ctx, userInfo)
}

// upsertUser returns the local user for a Google profile, creating it on
// first login. Configured admin addresses are promoted to administrator.
func (s *authService) upsertUser(ctx context.Context, info *transfer.GoogleUserInfo) (int64, error) {
	role := models.RoleSubscriber
	for _, email := range s.cfg.AdminEmails {
		if strings.EqualFold(email, info.Email) {
			role = models.RoleAdministrator
		}
	}

	user, isExist, err := s.u.GetByEmail(ctx, info.Email)
	if err != nil {
		return 0, err
	}

	if !isExist {
		userID, err := s.u.Create(ctx, &models.User{
			GoogleID:       info.ID,
			Email:          info.Email,
			Name:           info.Name,
			ProfilePicture: info.Picture,
			Role:           role,
		})
		if err != nil {
			slog.Info(err.Error())
			return 0, err
		}
		return userID, nil
	}

	changed := false
	if user.GoogleID == "" {
		user.GoogleID = info.ID
		changed = true
	}
	if role == models.RoleAdministrator && user.Role != role {
		user.Role = role
		changed = true
	}
	if changed {
		if err := s.u.Update(ctx, user); err != nil {
			return 0, err
		}
	}
	return user.ID, nil
}

func GetUserInfo(ctx context.Context, client *http.Client) (*transfer.GoogleUserInfo, error) {
	svc, err := oauth2api.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error creating userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error fetching user info: %w", err)
	}

	return &transfer.GoogleUserInfo{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
