package handler

import (
	"net/http"
	"strconv"

	"invoice-generator/internal/middleware"
	"invoice-generator/internal/models"
	"invoice-generator/internal/util"

	"github.com/gin-gonic/gin"
)

// requireUser returns the authenticated user or writes a 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// sessionOrAbort returns the login session id or writes a 401.
func sessionOrAbort(c *gin.Context) (string, bool) {
	sid := middleware.SessionID(c)
	if sid == "" {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return "", false
	}
	return sid, true
}

type page struct {
	Page, Size, Offset int
}

// parsePage reads ?page= and ?page_size=, clamping the size to 1..100.
func parsePage(c *gin.Context, defaultSize int) page {
	p, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if p <= 0 {
		p = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if size <= 0 || size > 100 {
		size = defaultSize
	}
	return page{Page: p, Size: size, Offset: (p - 1) * size}
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	}
}
