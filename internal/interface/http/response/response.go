package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

const internalMessage = "внутренняя ошибка сервера"

// Response: общий конверт всех JSON ответов API.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Error переводит ошибку сценария в HTTP ответ. Детали ошибок базы и
// непредвиденных ошибок клиенту не отдаются, они уходят в c.Errors для RequestLogger.
func Error(c *gin.Context, err error) {
	status, code, message, internal := describe(err)
	if internal {
		_ = c.Error(err)
	}
	abort(c, status, code, message)
}

func describe(err error) (status int, code apperror.ErrorCode, message string, internal bool) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, apperror.ErrCodeInternal, internalMessage, true
	}

	status = appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	switch appErr.Code {
	case apperror.ErrCodeDatabaseError, apperror.ErrCodeInternal:
		return status, appErr.Code, internalMessage, true
	}
	return status, appErr.Code, appErr.Message, false
}

func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, apperror.ErrCodeForbidden, message)
}

func TooManyRequests(c *gin.Context, message string) {
	abort(c, http.StatusTooManyRequests, apperror.ErrCodeTooManyRequests, message)
}

func abort(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, Response{
		Error: &ErrorInfo{Code: string(code), Message: message},
	})
}
