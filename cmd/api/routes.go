package main

import (
	"user-auth-server/internal/auth"
	"user-auth-server/internal/httpapi"
	"user-auth-server/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, codec *auth.Manager, roles auth.RoleSource) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Token issuance and the email confirmation handshake are public by
	// definition; the caller is not authenticated yet.
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/email-send-confirmation", h.SendEmailConfirmation)
		authGroup.GET("/email-confirm", h.ConfirmEmail)
	}

	// Registration and read-only user listing are public.
	r.POST("/users", h.RegisterUser)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUser)

	// Self-service routes: access token, freshly injected roles, then the
	// role check. A refresh token fails the role check, not authentication.
	protected := r.Group("/users")
	protected.Use(auth.Authenticate(codec), auth.InjectRoles(roles), rbac.RequireAnyRole(rbac.RoleUser))
	{
		protected.PUT("/:id", h.UpdateUser)
		protected.DELETE("/:id", h.DeleteUser)
	}
}
