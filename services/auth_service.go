package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vnkhanh/e-blog-backend/models"
	"github.com/vnkhanh/e-blog-backend/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// UserStore is what the auth flows need from persistence.
type UserStore interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// AuthService ties token issuance/verification to the logout blacklist and the
// user table. Revocation is checked before the signature.
type AuthService struct {
	users     UserStore
	tokens    *utils.TokenManager
	blacklist *utils.TokenBlacklist
	tokenTTL  time.Duration
}

func NewAuthService(users UserStore, tokens *utils.TokenManager, blacklist *utils.TokenBlacklist, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, blacklist: blacklist, tokenTTL: tokenTTL}
}

// Authenticate resolves token to an active user. Errors wrap the utils auth
// sentinels.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *utils.Claims, error) {
	if token == "" {
		return nil, nil, utils.ErrAuthRequired
	}
	if s.blacklist.IsRevoked(token) {
		return nil, nil, utils.ErrTokenRevoked
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil, err
	}

	var user *models.User
	if claims.UserID != 0 {
		user, err = s.users.GetUserByID(ctx, claims.UserID)
	} else {
		user, err = s.users.GetUserByUsername(ctx, claims.Username)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, utils.ErrAccountNotFound
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, utils.ErrAccountDisabled
	}
	return user, claims, nil
}

// Logout blacklists token until its own expiry.
func (s *AuthService) Logout(token string, claims *utils.Claims) {
	var exp int64
	if claims != nil && claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Unix()
	} else {
		exp = time.Now().Add(s.tokenTTL).Unix()
	}
	s.blacklist.Revoke(token, exp)
}

func (s *AuthService) Register(ctx context.Context, username, password, realName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		RealName:     realName,
		PasswordHash: string(hashed),
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, utils.ErrAccountDisabled
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
