package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-sleep/app/entity"
)

// patchableColumns is the allow-list of columns that may be overwritten
// through UpdateColumn. Credential material is deliberately absent.
var patchableColumns = map[string]struct{}{
	"week_sleeping": {},
	"no_of_weeks":   {},
	"sleep_time":    {},
	"sleep_out":     {},
	"hours":         {},
}

var ErrColumnNotPatchable = fmt.Errorf("column is not patchable")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (nickname, week_sleeping, no_of_weeks, sleep_time, sleep_out, hours, sleep_efficiency, password_hash, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Nickname,
		user.WeekSleeping,
		user.NoOfWeeks,
		user.SleepTime,
		user.SleepOut,
		user.Hours,
		user.SleepEfficiency,
		user.PasswordHash,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) FindByNickname(ctx context.Context, nickname string) (*entity.User, error) {
	query := `
		SELECT id, nickname, week_sleeping, no_of_weeks, sleep_time, sleep_out, hours, sleep_efficiency,
		       password_hash, refresh_token, created_at, updated_at
		FROM users WHERE nickname = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, nickname))
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	query := `
		SELECT id, nickname, week_sleeping, no_of_weeks, sleep_time, sleep_out, hours, sleep_efficiency,
		       password_hash, refresh_token, created_at, updated_at
		FROM users WHERE id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) scanOne(row *sql.Row) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID,
		&user.Nickname,
		&user.WeekSleeping,
		&user.NoOfWeeks,
		&user.SleepTime,
		&user.SleepOut,
		&user.Hours,
		&user.SleepEfficiency,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateColumn overwrites a single allow-listed column, leaving the rest of
// the record untouched. Returns the number of rows affected so callers can
// distinguish a missing user from a no-op.
func (r *UserRepository) UpdateColumn(ctx context.Context, id uint64, column string, value any) (int64, error) {
	if _, ok := patchableColumns[column]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrColumnNotPatchable, column)
	}

	query := fmt.Sprintf(`UPDATE users SET %s = ?, updated_at = ? WHERE id = ?`, column)
	result, err := r.db.ExecContext(ctx, query, value, time.Now(), id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// UpdateRefreshToken persists the latest issued refresh token without
// touching any other column.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uint64, token sql.NullString) error {
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, token, time.Now(), id)
	return err
}
