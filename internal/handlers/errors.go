package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/logger"
	"github.com/taskhive/taskhive/pkg/response"
)

// handleServiceError translates a service-layer error into the HTTP
// response envelope. Internal errors are logged but never leak their cause
// to the client.
func handleServiceError(c *gin.Context, err error) {
	var appErr *response.AppError
	switch services.KindOf(err) {
	case services.KindValidation:
		appErr = response.NewBadRequest(err.Error())
	case services.KindPermissionDenied, services.KindEmailMismatch:
		appErr = response.NewForbidden(err.Error())
	case services.KindNotFound:
		appErr = response.NewNotFound(err.Error())
	case services.KindInvalidState, services.KindAlreadyConsumed, services.KindConsistency:
		appErr = response.NewConflict(err.Error())
	case services.KindExpired:
		appErr = response.NewGone(err.Error())
	default:
		logger.Error().
			Str("request_id", middleware.GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Err(err).
			Msg("request failed")
		appErr = response.NewServerError("internal server error")
	}
	response.Error(c, appErr)
}
