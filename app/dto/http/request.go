package http

import "time"

type RegisterRequest struct {
	Nickname string `json:"nickname"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Patch requests use pointer fields so that zero values (hours: 0) are
// distinguishable from an absent field.

type UpdateWeekSleepingRequest struct {
	WeekSleeping *string `json:"weekSleeping"`
}

type UpdateNoOfWeeksRequest struct {
	NoOfWeeks *int `json:"noOfWeeks"`
}

type UpdateSleepTimeRequest struct {
	SleepTime *time.Time `json:"sleepTime"`
}

type UpdateSleepOutRequest struct {
	SleepOut *time.Time `json:"sleepOut"`
}

type UpdateHoursRequest struct {
	Hours *float64 `json:"hours"`
}
