package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propertydesk/property-broker/internal/common"
)

// respondError maps domain errors onto HTTP statuses. AppError codes
// pass through so clients can branch on them.
func respondError(c *gin.Context, err error) {
	code := "INTERNAL"
	message := "internal server error"

	var appErr *common.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrExtractionFailed), errors.Is(err, common.ErrNoRecordsExtracted):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{"code": code, "message": message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": message})
}
