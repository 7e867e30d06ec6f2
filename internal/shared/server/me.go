package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tailor-portal/internal/shared/server/middleware"
	"tailor-portal/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok || id.Subject == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	response := gin.H{
		"userId": id.Subject,
	}
	if id.Email != "" {
		response["email"] = id.Email
	}
	if id.Name != "" {
		response["name"] = id.Name
	}

	respond.JSON(c, http.StatusOK, response)
}
