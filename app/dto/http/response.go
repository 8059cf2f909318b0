package http

import (
	"time"

	"github.com/vibast-solutions/ms-go-sleep/app/entity"
)

// Response is the envelope every success path returns. Key casing follows
// the public wire contract.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the envelope every failure path returns. It never carries
// data or internals.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func NewResponse(statusCode int, data any, message string) Response {
	return Response{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    true,
	}
}

func NewErrorResponse(statusCode int, message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
		Success:    false,
	}
}

// UserView is the sanitized projection of a user record. Credential fields
// are never part of it.
type UserView struct {
	ID              uint64     `json:"id"`
	Nickname        string     `json:"nickname"`
	WeekSleeping    *string    `json:"weekSleeping"`
	NoOfWeeks       int        `json:"noOfWeeks"`
	SleepTime       *time.Time `json:"sleepTime"`
	SleepOut        *time.Time `json:"sleepOut"`
	Hours           float64    `json:"hours"`
	SleepEfficiency int        `json:"sleepEfficiency"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func NewUserView(user *entity.User) UserView {
	view := UserView{
		ID:              user.ID,
		Nickname:        user.Nickname,
		NoOfWeeks:       user.NoOfWeeks,
		Hours:           user.Hours,
		SleepEfficiency: user.SleepEfficiency,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
	if user.WeekSleeping.Valid {
		view.WeekSleeping = &user.WeekSleeping.String
	}
	if user.SleepTime.Valid {
		view.SleepTime = &user.SleepTime.Time
	}
	if user.SleepOut.Valid {
		view.SleepOut = &user.SleepOut.Time
	}
	return view
}

// BootstrapData is the register payload: the sanitized record spread together
// with the freshly issued token pair.
type BootstrapData struct {
	UserView
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenPairData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// EmptyData mirrors the acknowledgment-only update responses, which carry an
// empty object rather than the updated record.
type EmptyData struct{}
