package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of a success envelope.
type Response map[string]interface{}

// Business codes carried in every envelope.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeEmptyInvoice = 42201
	CodeServerErr    = 50001
	CodeExportFailed = 50201
)

// Success writes {code: 0, data}.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes {code, message}.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// ErrorWithDetails writes {code, message, details}, used for per-field
// validation reasons.
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, msg string, details map[string]string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"details": details,
	})
}
