package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/rxkit/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

var statusByCode = map[errors.ErrorCode]int{
	errors.ErrCodeNotFound:         http.StatusNotFound,
	errors.ErrCodeInvalidArgument:  http.StatusBadRequest,
	errors.ErrCodeInvalidConfig:    http.StatusBadRequest,
	errors.ErrCodeTypeMismatch:     http.StatusUnprocessableEntity,
	errors.ErrCodeTransformFailed:  http.StatusUnprocessableEntity,
	errors.ErrCodeSchedulerStopped: http.StatusServiceUnavailable,
	errors.ErrCodeTimeout:          http.StatusGatewayTimeout,
}

// StatusFor maps an error code to an HTTP status. Unknown codes map to 500.
func StatusFor(code errors.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondWithError writes err as an ErrorResponse. Errors that are not
// AppErrors are reported as INTERNAL_ERROR.
func RespondWithError(c *gin.Context, err error) {
	appErr := errors.Wrap(err)
	c.AbortWithStatusJSON(StatusFor(appErr.Code), appErr.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
