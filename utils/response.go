package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/apperrors"
)

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, errCode apperrors.Code, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   gin.H{"code": errCode, "message": message},
	})
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound, apperrors.CodeItemNotFound, apperrors.CodeEstablishmentNotFound,
		apperrors.CodeUserNotFound, apperrors.CodeRoomNotFound:
		return http.StatusNotFound
	case apperrors.CodeValidation, apperrors.CodePasswordMismatch:
		return http.StatusBadRequest
	case apperrors.CodeDuplicate, apperrors.CodeConflict, apperrors.CodeRoomAlreadyBlocked, apperrors.CodeRoomBlocked:
		return http.StatusConflict
	case apperrors.CodeInsufficientStock:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondError renders err. Errors that are not AppErrors are reported as a
// generic server error without leaking their text.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	appErr, ok := apperrors.As(err)
	if !ok {
		JSONError(c, http.StatusInternalServerError, apperrors.CodeInternal, "Une erreur interne est survenue")
		return
	}
	JSONError(c, StatusFor(appErr.Code), appErr.Code, appErr.Message)
}

// BadRequest renders a validation error for a malformed payload.
func BadRequest(c *gin.Context, message string) {
	JSONError(c, http.StatusBadRequest, apperrors.CodeValidation, message)
}
