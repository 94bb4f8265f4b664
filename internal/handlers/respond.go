package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/apperrors"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/dto"
)

// respondSuccess writes the canonical success envelope.
func respondSuccess(c *gin.Context, status int, payload any) {
	c.JSON(status, dto.SuccessResponse{Success: payload})
}

// respondError maps a rule-engine or persistence outcome to the wire
// contract: AppErrors carry their status and exact message; anything else is
// an unexpected fault, logged and masked as a 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error("Request failed", slog.String("error", appErr.Message), slog.Any("cause", appErr.Err))
		} else {
			logger.Warn("Request rejected", slog.Int("status", appErr.Code), slog.String("reason", appErr.Message))
		}
		c.JSON(appErr.Code, dto.ErrorResponse{Err: appErr.Message})
		return
	}

	logger.Error("Unhandled error", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Err: "Internal server error."})
}
