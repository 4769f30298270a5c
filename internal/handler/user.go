package handler

import (
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe returns the logged-in user.
func GetMe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	u := userJSON(user)
	u["created_at"] = user.CreatedAt
	util.Success(c, util.Response{"user": u})
}
