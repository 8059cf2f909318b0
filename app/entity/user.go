package entity

import (
	"database/sql"
	"time"
)

// DefaultSleepEfficiency is assigned to every newly created user record.
const DefaultSleepEfficiency = 90

type User struct {
	ID              uint64
	Nickname        string
	WeekSleeping    sql.NullString
	NoOfWeeks       int
	SleepTime       sql.NullTime
	SleepOut        sql.NullTime
	Hours           float64
	SleepEfficiency int
	PasswordHash    string
	RefreshToken    sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
