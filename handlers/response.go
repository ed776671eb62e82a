package handlers

import (
	"github.com/gin-gonic/gin"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusSaved   = "saved"
	StatusEmpty   = "empty"
	StatusError   = "error"
	StatusOK      = "ok"
)

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondStatus(c *gin.Context, httpStatus int, status, message string) {
	c.JSON(httpStatus, statusResponse{Status: status, Message: message})
}

func respondError(c *gin.Context, httpStatus int, message string) {
	respondStatus(c, httpStatus, StatusError, message)
}
