package controller

import (
	"errors"
	"fmt"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-sleep/app/dto/http"
	"github.com/vibast-solutions/ms-go-sleep/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type SleepController struct {
	sleepService *service.SleepService
}

func NewSleepController(sleepService *service.SleepService) *SleepController {
	return &SleepController{sleepService: sleepService}
}

func (c *SleepController) UpdateWeekSleeping(ctx echo.Context) error {
	var req httpdto.UpdateWeekSleepingRequest
	if err := ctx.Bind(&req); err != nil {
		return invalidBody(ctx)
	}
	if req.WeekSleeping == nil {
		return fieldRequired(ctx, service.FieldWeekSleeping)
	}
	return c.update(ctx, service.FieldWeekSleeping, *req.WeekSleeping)
}

func (c *SleepController) UpdateNoOfWeeks(ctx echo.Context) error {
	var req httpdto.UpdateNoOfWeeksRequest
	if err := ctx.Bind(&req); err != nil {
		return invalidBody(ctx)
	}
	if req.NoOfWeeks == nil {
		return fieldRequired(ctx, service.FieldNoOfWeeks)
	}
	return c.update(ctx, service.FieldNoOfWeeks, *req.NoOfWeeks)
}

func (c *SleepController) UpdateSleepTime(ctx echo.Context) error {
	var req httpdto.UpdateSleepTimeRequest
	if err := ctx.Bind(&req); err != nil {
		return invalidBody(ctx)
	}
	if req.SleepTime == nil {
		return fieldRequired(ctx, service.FieldSleepTime)
	}
	return c.update(ctx, service.FieldSleepTime, *req.SleepTime)
}

func (c *SleepController) UpdateSleepOut(ctx echo.Context) error {
	var req httpdto.UpdateSleepOutRequest
	if err := ctx.Bind(&req); err != nil {
		return invalidBody(ctx)
	}
	if req.SleepOut == nil {
		return fieldRequired(ctx, service.FieldSleepOut)
	}
	return c.update(ctx, service.FieldSleepOut, *req.SleepOut)
}

func (c *SleepController) UpdateHours(ctx echo.Context) error {
	var req httpdto.UpdateHoursRequest
	if err := ctx.Bind(&req); err != nil {
		return invalidBody(ctx)
	}
	// A present zero is a valid measurement; only an absent field is an error.
	if req.Hours == nil {
		return fieldRequired(ctx, service.FieldHours)
	}
	return c.update(ctx, service.FieldHours, *req.Hours)
}

// GetSleepEfficiency returns the authenticated user's record. Credential
// fields are excluded like everywhere else.
func (c *SleepController) GetSleepEfficiency(ctx echo.Context) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized,
			httpdto.NewErrorResponse(http.StatusUnauthorized, "unauthorized"))
	}

	user, err := c.sleepService.Profile(ctx.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound,
				httpdto.NewErrorResponse(http.StatusNotFound, "user not found"))
		}
		logrus.WithError(err).Error("Profile fetch failed")
		return ctx.JSON(http.StatusInternalServerError,
			httpdto.NewErrorResponse(http.StatusInternalServerError, "internal server error"))
	}

	return ctx.JSON(http.StatusOK,
		httpdto.NewResponse(http.StatusOK, httpdto.NewUserView(user), "sleep efficiency fetched successfully"))
}

// update is the shared tail of every patch endpoint: one field, one
// overwrite, an acknowledgment with an empty data object.
func (c *SleepController) update(ctx echo.Context, field service.Field, value any) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized,
			httpdto.NewErrorResponse(http.StatusUnauthorized, "unauthorized"))
	}

	if err := c.sleepService.UpdateField(ctx.Request().Context(), userID, field, value); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound,
				httpdto.NewErrorResponse(http.StatusNotFound, "user not found"))
		}
		logrus.WithError(err).WithField("field", string(field)).Error("Field update failed")
		return ctx.JSON(http.StatusInternalServerError,
			httpdto.NewErrorResponse(http.StatusInternalServerError, "internal server error"))
	}

	return ctx.JSON(http.StatusOK,
		httpdto.NewResponse(http.StatusOK, httpdto.EmptyData{}, fmt.Sprintf("%s updated successfully", field)))
}

func invalidBody(ctx echo.Context) error {
	return ctx.JSON(http.StatusBadRequest,
		httpdto.NewErrorResponse(http.StatusBadRequest, "invalid request body"))
}

func fieldRequired(ctx echo.Context, field service.Field) error {
	return ctx.JSON(http.StatusBadRequest,
		httpdto.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("%s is required", field)))
}
