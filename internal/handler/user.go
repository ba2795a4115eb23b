package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillforge/account-service/internal/constants"
	"github.com/skillforge/account-service/internal/dto"
	apperrors "github.com/skillforge/account-service/internal/errors"
	"github.com/skillforge/account-service/internal/middleware"
	"github.com/skillforge/account-service/internal/service"
	ctxutil "github.com/skillforge/account-service/pkg/context"
	"github.com/skillforge/account-service/pkg/logger"
)

// UserHandler exposes the authenticated account endpoints: profile,
// subscription and progress.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile returns the authenticated user's sanitized account
func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetProfile")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(apperrors.ToHTTPStatus(apperrors.ErrAuthRequired),
			constants.BuildErrorResponse(apperrors.ErrAuthRequired.Message, nil))
		return
	}

	response, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to fetch profile").
			String("user_id", userID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateProfile overwrites the username and avatar
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateProfile")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(apperrors.ToHTTPStatus(apperrors.ErrAuthRequired),
			constants.BuildErrorResponse(apperrors.ErrAuthRequired.Message, nil))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid profile update request").
			String("user_id", userID).
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	response, err := h.userService.UpdateProfile(ctx, userID, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Profile update failed").
			String("user_id", userID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	logger.InfoWithContext(ctx, "Profile updated successfully").
		String("user_id", userID).
		Log()

	c.JSON(http.StatusOK, response)
}

// UpdateSubscription switches the subscription tier
func (h *UserHandler) UpdateSubscription(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateSubscription")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(apperrors.ToHTTPStatus(apperrors.ErrAuthRequired),
			constants.BuildErrorResponse(apperrors.ErrAuthRequired.Message, nil))
		return
	}

	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid subscription update request").
			String("user_id", userID).
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	response, err := h.userService.UpdateSubscription(ctx, userID, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Subscription update failed").
			String("user_id", userID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	logger.InfoWithContext(ctx, "Subscription updated successfully").
		String("user_id", userID).
		String("type", req.Type).
		Log()

	c.JSON(http.StatusOK, response)
}

// GetProgress recomputes and returns the completion percentage
func (h *UserHandler) GetProgress(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetProgress")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(apperrors.ToHTTPStatus(apperrors.ErrAuthRequired),
			constants.BuildErrorResponse(apperrors.ErrAuthRequired.Message, nil))
		return
	}

	response, err := h.userService.GetProgress(ctx, userID)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to fetch progress").
			String("user_id", userID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, response)
}
