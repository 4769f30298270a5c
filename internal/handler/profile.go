package handler

import (
	"net/http"
	"strings"

	"invoice-generator/internal/middleware"
	"invoice-generator/internal/models"
	"invoice-generator/internal/session"
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdateProfileReq struct {
	Name string `json:"name" binding:"required"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfile renames the current user.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requireUser(c)
		if !ok {
			return
		}

		var req UpdateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if err := util.ValidateName(req.Name); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}

		if err := db.Model(user).Update("name", req.Name).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
			return
		}
		user.Name = req.Name

		util.Success(c, util.Response{"user": userJSON(user)})
	}
}

// ChangePassword replaces the password and signs out every other session of
// the user.
func ChangePassword(db *gorm.DB, bcryptCost int, sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requireUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "current password is wrong")
			return
		}
		if err := util.ValidatePassword(req.NewPassword); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}
		if err := db.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
			return
		}

		current := middleware.SessionID(c)
		var others []models.Session
		db.Where("user_id = ? AND id <> ? AND revoked = ?", user.ID, current, false).Find(&others)
		for _, s := range others {
			sessions.Drop(s.ID)
		}
		if len(others) > 0 {
			db.Model(&models.Session{}).
				Where("user_id = ? AND id <> ?", user.ID, current).
				Update("revoked", true)
		}

		util.Success(c, util.Response{
			"message":          "password changed",
			"revoked_sessions": len(others),
		})
	}
}
