package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-sleep/app/dto"
	"github.com/vibast-solutions/ms-go-sleep/app/entity"
	"github.com/vibast-solutions/ms-go-sleep/app/repository"
	"github.com/vibast-solutions/ms-go-sleep/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNicknameRequired = errors.New("nickname is required")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrTokenExpired     = errors.New("token has expired")
)

type Claims struct {
	UserID   uint64 `json:"user_id"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, cfg: cfg}
}

// NormalizeNickname lowercases and trims a nickname so lookups and storage
// agree on a single spelling.
func NormalizeNickname(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

// Bootstrap finds or creates the user behind a nickname and always issues a
// fresh token pair. Repeated calls never create duplicates, but the tokens
// differ on every call.
func (s *AuthService) Bootstrap(ctx context.Context, nickname string) (*dto.BootstrapResult, error) {
	nickname = NormalizeNickname(nickname)
	if nickname == "" {
		return nil, ErrNicknameRequired
	}

	user, err := s.userRepo.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}

	created := false
	if user == nil {
		user, err = s.createUser(ctx, nickname)
		if err != nil {
			return nil, err
		}
		created = true
	}

	tokens, err := s.IssueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// Re-read so the response reflects store-assigned state.
	user, err = s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return &dto.BootstrapResult{
		User:    user,
		Tokens:  tokens,
		Created: created,
	}, nil
}

func (s *AuthService) createUser(ctx context.Context, nickname string) (*entity.User, error) {
	password, err := generatePassword(nickname)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Nickname:        nickname,
		SleepEfficiency: entity.DefaultSleepEfficiency,
		PasswordHash:    string(hashedPassword),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueTokenPair signs an access and a refresh token for the user and
// persists the refresh token onto the record, overwriting any previous one.
func (s *AuthService) IssueTokenPair(ctx context.Context, userID uint64) (dto.TokenPair, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return dto.TokenPair{}, err
	}
	if user == nil {
		return dto.TokenPair{}, ErrUserNotFound
	}

	accessToken, err := s.signToken(user, s.cfg.AccessSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return dto.TokenPair{}, err
	}

	refreshToken, err := s.signToken(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return dto.TokenPair{}, err
	}

	err = s.userRepo.UpdateRefreshToken(ctx, user.ID, sql.NullString{String: refreshToken, Valid: true})
	if err != nil {
		return dto.TokenPair{}, err
	}

	return dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh validates a presented refresh token against both its signature and
// the stored copy, then rotates the pair. A superseded token fails the
// stored-copy comparison even while its signature is still valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (dto.TokenPair, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return dto.TokenPair{}, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return dto.TokenPair{}, err
	}
	if user == nil {
		return dto.TokenPair{}, ErrInvalidToken
	}

	if !user.RefreshToken.Valid || user.RefreshToken.String != refreshToken {
		return dto.TokenPair{}, ErrInvalidToken
	}

	return s.IssueTokenPair(ctx, user.ID)
}

// Logout drops the stored refresh token, ending the single live session.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, sql.NullString{})
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parseToken(tokenString, s.cfg.AccessSecret)
}

func (s *AuthService) signToken(user *entity.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Nickname: user.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *AuthService) parseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// generatePassword synthesizes the bootstrap credential: the nickname plus a
// random 3-digit suffix. Suitable only for the low-security demo accounts
// this service issues.
func generatePassword(nickname string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", nickname, n.Int64()+100), nil
}
