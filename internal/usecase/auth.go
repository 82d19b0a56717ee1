package usecase

import (
	"context"
	"errors"
	"fmt"

	"TrendWatch/internal/domain/models"
	drepo "TrendWatch/internal/domain/repository"
	applogger "TrendWatch/pkg/logger"
	"TrendWatch/pkg/util"

	"golang.org/x/crypto/bcrypt"
)

// AuthUseCase registers accounts and manages login sessions.
type AuthUseCase struct {
	users    drepo.UserRepository
	sessions drepo.SessionStore
	cost     int
	log      *applogger.Logger
}

func NewAuthUseCase(users drepo.UserRepository, sessions drepo.SessionStore, l *applogger.Logger) *AuthUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &AuthUseCase{users: users, sessions: sessions, cost: bcrypt.DefaultCost, log: l}
}

// Register creates the account and logs it in.
func (uc *AuthUseCase) Register(ctx context.Context, username, password string) (models.Identity, string, error) {
	username = util.NormalizeUsername(username)
	if username == "" || password == "" {
		return models.Identity{}, "", models.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return models.Identity{}, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := uc.users.Create(ctx, username, string(hash))
	if err != nil {
		return models.Identity{}, "", err
	}
	uc.log.Info("user registered", applogger.Int64("user_id", u.ID))

	return uc.startSession(ctx, u)
}

// Login checks credentials. Unknown users and wrong passwords are indistinguishable.
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (models.Identity, string, error) {
	username = util.NormalizeUsername(username)

	u, err := uc.users.FindByUsername(ctx, username)
	if errors.Is(err, models.ErrUserNotFound) {
		return models.Identity{}, "", models.ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.Identity{}, "", models.ErrInvalidCredentials
	}

	return uc.startSession(ctx, u)
}

// Logout ends the session. Unknown tokens are ignored.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	return uc.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to its identity.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	return uc.sessions.Get(ctx, token)
}

func (uc *AuthUseCase) startSession(ctx context.Context, u models.User) (models.Identity, string, error) {
	id := models.Identity{UserID: u.ID, Username: u.Username}
	token, err := uc.sessions.Create(ctx, id)
	if err != nil {
		return models.Identity{}, "", fmt.Errorf("create session: %w", err)
	}
	return id, token, nil
}
