package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/errors"
	"github.com/johnquangdev/meeting-analyzer/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	ucErrors "github.com/johnquangdev/meeting-analyzer/internal/usecase/errors"
)

// MapError converts usecase and domain errors into an AppError
func MapError(err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, ucErrors.ErrNoTranscriptInput):
		return errors.ErrInvalidArgument("Provide a transcript file or scopeText")
	case stdErrors.Is(err, ucErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, ucErrors.ErrUnsupportedFileType):
		var typeErr *ucErrors.UnsupportedFileTypeError
		if stdErrors.As(err, &typeErr) {
			return errors.ErrUnsupportedFileType(typeErr.MIMEType)
		}
		return errors.ErrUnsupportedFileType("")
	case stdErrors.Is(err, ucErrors.ErrExtractionFailed):
		return errors.ErrExtractionFailed(err)
	case stdErrors.Is(err, ucErrors.ErrRateLimited):
		return errors.ErrRateLimited(err)
	case stdErrors.Is(err, ucErrors.ErrCreditsExhausted):
		return errors.ErrCreditsExhausted(err)
	case stdErrors.Is(err, ucErrors.ErrMalformedAnalysis):
		return errors.ErrMalformedAnalysis(err)
	case stdErrors.Is(err, ucErrors.ErrRequestFailed):
		return errors.ErrRequestFailed(err)
	case stdErrors.Is(err, ucErrors.ErrAnalysisInProgress):
		return errors.ErrAnalysisInProgress("")
	case stdErrors.Is(err, ucErrors.ErrTranscriptLocked):
		return errors.ErrTranscriptLocked("")
	case stdErrors.Is(err, ucErrors.ErrAnalysisNotFound):
		return errors.ErrNotFound("analysis")
	case stdErrors.Is(err, entities.ErrMeetingNotFound):
		return errors.ErrNotFound("meeting")
	case stdErrors.Is(err, entities.ErrMeetingCancelled):
		return errors.ErrMeetingCancelled("")
	case stdErrors.Is(err, ucErrors.ErrAnalysisCancelled), stdErrors.Is(err, context.Canceled):
		return errors.ErrCancelled(err)
	case stdErrors.Is(err, ucErrors.ErrPersistenceFailed):
		return errors.ErrPersistenceFailed(err)
	default:
		return errors.ErrInternal(err)
	}
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func logError(logger *zap.Logger, c echo.Context, appErr errors.AppError) {
	if logger == nil {
		return
	}
	logger.Error("http.response.error",
		zap.String("request_id", getRequestID(c)),
		zap.String("path", c.Path()),
		zap.String("app_code", appErr.Code.String()),
		zap.Error(appErr),
	)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := common.SuccessResponse{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger.
// The raw cause is logged, never returned.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := MapError(err)
	logError(logger, c, appErr)

	return c.JSON(appErr.HTTPCode, common.ErrorResponse{
		Code:    appErr.Code.String(),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// HandleAnalyzeError writes the { error, detail } body used by POST /analyze
func HandleAnalyzeError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := MapError(err)
	logError(logger, c, appErr)

	return c.JSON(appErr.HTTPCode, common.AnalyzeErrorResponse{
		Error:  appErr.Code.String(),
		Detail: appErr.Message,
	})
}
