package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"invoice-generator/internal/models"
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys set by AuthMiddleware.
const (
	CurrentUserKey = "currentUser"
	SessionIDKey   = "sessionID"
)

// TokenCookie is the cookie AuthMiddleware falls back to.
const TokenCookie = "inv_token"

// AuthMiddleware verifies the JWT, checks that its login session is still
// active and puts the user and session id into the context.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			c.Abort()
			return
		}

		var sess models.Session
		if err := db.First(&sess, "id = ?", claims.SessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load session")
			}
			c.Abort()
			return
		}
		if sess.UserID != claims.UserID || !sess.Active(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "user not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
			}
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, &user)
		c.Set(SessionIDKey, sess.ID)
		c.Next()
	}
}

// tokenFromRequest looks at the Authorization header, then ?token= (for
// plain download links), then the cookie.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if t := c.Query("token"); t != "" {
		return t
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// SessionID returns the login session id stored by AuthMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
