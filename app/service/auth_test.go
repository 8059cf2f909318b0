package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-sleep/app/repository"
	"github.com/vibast-solutions/ms-go-sleep/app/service"
	"github.com/vibast-solutions/ms-go-sleep/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
)

const (
	insertUserQuery         = `(?s)INSERT INTO users \(nickname, week_sleeping, no_of_weeks, sleep_time, sleep_out, hours, sleep_efficiency, password_hash, refresh_token, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?, \?, \?, \?, \?\)`
	findByNicknameQuery     = `(?s)SELECT id, nickname, week_sleeping, no_of_weeks, sleep_time, sleep_out, hours, sleep_efficiency,\s+password_hash, refresh_token, created_at, updated_at\s+FROM users WHERE nickname = \?`
	findByIDQuery           = `(?s)SELECT id, nickname, week_sleeping, no_of_weeks, sleep_time, sleep_out, hours, sleep_efficiency,\s+password_hash, refresh_token, created_at, updated_at\s+FROM users WHERE id = \?`
	updateRefreshTokenQuery = `UPDATE users SET refresh_token = \?, updated_at = \? WHERE id = \?`
)

var userColumns = []string{
	"id",
	"nickname",
	"week_sleeping",
	"no_of_weeks",
	"sleep_time",
	"sleep_out",
	"hours",
	"sleep_efficiency",
	"password_hash",
	"refresh_token",
	"created_at",
	"updated_at",
}

func testConfig() *config.Config {
	return &config.Config{
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 10 * 24 * time.Hour,
	}
}

func newAuthServiceWithMock(t *testing.T) (*service.AuthService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	svc := service.NewAuthService(userRepo, testConfig())

	return svc, mock, func() { _ = db.Close() }
}

func userRowValues(id uint64, nickname string, refreshToken sql.NullString, now time.Time) []driver.Value {
	return []driver.Value{
		id,
		nickname,
		sql.NullString{Valid: false},
		0,
		sql.NullTime{Valid: false},
		sql.NullTime{Valid: false},
		0.0,
		90,
		"hash",
		refreshToken,
		now,
		now,
	}
}

func expectUserByID(mock sqlmock.Sqlmock, id uint64, nickname string, refreshToken sql.NullString, now time.Time) {
	mock.ExpectQuery(findByIDQuery).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userRowValues(id, nickname, refreshToken, now)...))
}

func signTestToken(t *testing.T, userID uint64, nickname, secret string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := &service.Claims{
		UserID:   userID,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func TestAuthService_Bootstrap_CreatesUser(t *testing.T) {
	svc, mock, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectQuery(findByNicknameQuery).
		WithArgs("nova").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectExec(insertUserQuery).
		WithArgs("nova", sqlmock.AnyArg(), 0, sqlmock.AnyArg(), sqlmock.AnyArg(), 0.0, 90,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectUserByID(mock, 1, "nova", sql.NullString{Valid: false}, now)
	mock.ExpectExec(updateRefreshTokenQuery).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUserByID(mock, 1, "nova", sql.NullString{String: "rotated", Valid: true}, now)

	result, err := svc.Bootstrap(context.Background(), "  Nova ")
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected Created to be true")
	}
	if result.User.Nickname != "nova" {
		t.Fatalf("expected normalized nickname, got %q", result.User.Nickname)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens to be issued")
	}

	claims, err := svc.ValidateAccessToken(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("access token validation failed: %v", err)
	}
	if claims.UserID != 1 || claims.Nickname != "nova" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Bootstrap_ExistingUser(t *testing.T) {
	svc, mock, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectQuery(findByNicknameQuery).
		WithArgs("nova").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userRowValues(1, "nova", sql.NullString{Valid: false}, now)...))
	expectUserByID(mock, 1, "nova", sql.NullString{Valid: false}, now)
	mock.ExpectExec(updateRefreshTokenQuery).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUserByID(mock, 1, "nova", sql.NullString{String: "rotated", Valid: true}, now)

	result, err := svc.Bootstrap(context.Background(), "Nova")
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if result.Created {
		t.Fatalf("expected Created to be false for existing user")
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected fresh tokens for existing user")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Bootstrap_BlankNickname(t *testing.T) {
	svc, _, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	_, err := svc.Bootstrap(context.Background(), "   ")
	if !errors.Is(err, service.ErrNicknameRequired) {
		t.Fatalf("expected ErrNicknameRequired, got %v", err)
	}
}

func TestAuthService_IssueTokenPair_UserNotFound(t *testing.T) {
	svc, mock, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByIDQuery).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := svc.IssueTokenPair(context.Background(), 42)
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Refresh_RotatesTokens(t *testing.T) {
	svc, mock, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	now := time.Now()
	refreshToken := signTestToken(t, 7, "nova", "test-refresh-secret", time.Hour)

	expectUserByID(mock, 7, "nova", sql.NullString{String: refreshToken, Valid: true}, now)
	expectUserByID(mock, 7, "nova", sql.NullString{String: refreshToken, Valid: true}, now)
	mock.ExpectExec(updateRefreshTokenQuery).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tokens, err := svc.Refresh(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected rotated token pair")
	}
	if tokens.RefreshToken == refreshToken {
		t.Fatalf("expected a new refresh token, got the presented one back")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Refresh_SupersededToken(t *testing.T) {
	svc, mock, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	now := time.Now()
	presented := signTestToken(t, 7, "nova", "test-refresh-secret", time.Hour)

	// The stored token differs: a later issuance superseded the presented one.
	expectUserByID(mock, 7, "nova", sql.NullString{String: "a-newer-token", Valid: true}, now)

	_, err := svc.Refresh(context.Background(), presented)
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Refresh_ExpiredToken(t *testing.T) {
	svc, _, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	expired := signTestToken(t, 7, "nova", "test-refresh-secret", -time.Minute)

	_, err := svc.Refresh(context.Background(), expired)
	if !errors.Is(err, service.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_Refresh_WrongSecret(t *testing.T) {
	svc, _, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	// Access tokens must not be usable as refresh tokens.
	accessToken := signTestToken(t, 7, "nova", "test-access-secret", time.Hour)

	_, err := svc.Refresh(context.Background(), accessToken)
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Logout_ClearsStoredToken(t *testing.T) {
	svc, mock, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	mock.ExpectExec(updateRefreshTokenQuery).
		WithArgs(sql.NullString{Valid: false}, sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.Logout(context.Background(), 7); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_ValidateAccessToken_Invalid(t *testing.T) {
	svc, _, cleanup := newAuthServiceWithMock(t)
	defer cleanup()

	if _, err := svc.ValidateAccessToken("not-a-token"); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	wrongSecret := signTestToken(t, 7, "nova", "another-secret", time.Hour)
	if _, err := svc.ValidateAccessToken(wrongSecret); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}
