// Package services contains server-side business logic. This file implements
// UserService: registration, login, and resolving the caller's wallet
// address from an authenticated user id.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/server/auth"
	"github.com/securechain/securechain/internal/server/config"
	"github.com/securechain/securechain/internal/server/models"
	"github.com/securechain/securechain/internal/server/repositories/repomanager"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cfg         *config.Config
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{db: db, repomanager: m, cfg: cfg}
}

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Register creates an account bound to a wallet address. Both the username
// and the wallet address must be unique; the optional webhook is where key
// notifications for this wallet are relayed.
func (s *UserService) Register(ctx context.Context, username, password, walletAddress, notifyWebhook string) (*models.User, error) {
	salt := common.GenerateRandByteArray(saltLen)
	user := &models.User{
		ID:            uuid.New().String(),
		Username:      username,
		PasswordHash:  hashPassword(password, salt),
		Salt:          salt,
		WalletAddress: walletAddress,
		NotifyWebhook: notifyWebhook,
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login verifies the password and mints an access token. The user row is
// returned alongside so callers learn the wallet address bound to the
// account.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	candidate := hashPassword(password, user.Salt)
	if subtle.ConstantTimeCompare(user.PasswordHash, candidate) != 1 {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, []byte(s.cfg.SecretKey), s.cfg.AccessTokenValidityDuration)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetByID loads the user row for an authenticated user id. The wallet
// address it carries is the caller identity used in access decisions.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// GetByWalletAddress resolves a recipient wallet to its account, if any.
func (s *UserService) GetByWalletAddress(ctx context.Context, wallet string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByWalletAddress(ctx, wallet)
}
