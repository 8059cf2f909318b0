package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-sleep/app/entity"
	"github.com/vibast-solutions/ms-go-sleep/app/repository"
)

var ErrUnknownField = errors.New("unknown field")

// Field names a single patchable attribute of the sleep record. The values
// match the public request/route names.
type Field string

const (
	FieldWeekSleeping Field = "weekSleeping"
	FieldNoOfWeeks    Field = "noOfWeeks"
	FieldSleepTime    Field = "sleepTime"
	FieldSleepOut     Field = "sleepOut"
	FieldHours        Field = "hours"
)

var fieldColumns = map[Field]string{
	FieldWeekSleeping: "week_sleeping",
	FieldNoOfWeeks:    "no_of_weeks",
	FieldSleepTime:    "sleep_time",
	FieldSleepOut:     "sleep_out",
	FieldHours:        "hours",
}

type SleepService struct {
	userRepo *repository.UserRepository
}

func NewSleepService(userRepo *repository.UserRepository) *SleepService {
	return &SleepService{userRepo: userRepo}
}

// UpdateField overwrites exactly one field on the user's record. All six
// patch endpoints funnel through here; the allow-list keeps credential
// columns out of reach.
func (s *SleepService) UpdateField(ctx context.Context, userID uint64, field Field, value any) error {
	column, ok := fieldColumns[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	rows, err := s.userRepo.UpdateColumn(ctx, userID, column, value)
	if err != nil {
		return err
	}
	if rows == 0 {
		// MySQL reports changed rows, not matched rows: re-sending the
		// currently stored value can affect zero rows even though the user
		// exists. Only a missing row is an error.
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
	}
	return nil
}

// Profile returns the user's full record.
func (s *SleepService) Profile(ctx context.Context, userID uint64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
