package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docgate-io/docgate/internal/middleware"
	"github.com/docgate-io/docgate/internal/model"
)

type RouterDeps struct {
	Auth          *AuthHandler
	Chat          *ChatHandler
	Documents     *DocumentHandler
	Admin         *AdminHandler
	Files         *FileHandler
	JWTSecret     []byte
	ChatRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	// File downloads carry tenant content, same auth posture as the rest.
	authGroup.GET("/files/:key", deps.Files.Get)

	chatGroup := authGroup.Group("")
	if deps.ChatRateLimit > 0 {
		chatGroup.Use(middleware.RateLimit(deps.ChatRateLimit))
	}
	chatGroup.POST("/chat", deps.Chat.Query)

	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)

	// Content management needs at least project admin.
	docAdmin := authGroup.Group("", middleware.RequireRole(model.RoleProjectAdmin))
	docAdmin.POST("/documents", deps.Documents.Upload)
	docAdmin.POST("/documents/:id/process", deps.Documents.Process)
	docAdmin.DELETE("/documents/:id", deps.Documents.Delete)

	// Tenant and account management needs account admin.
	admin := authGroup.Group("/admin", middleware.RequireRole(model.RoleAccountAdmin))
	admin.POST("/clients", deps.Admin.CreateClient)
	admin.GET("/clients", deps.Admin.ListClients)
	admin.PUT("/clients/:id/status", deps.Admin.SetClientStatus)
	admin.POST("/projects", deps.Admin.CreateProject)
	admin.GET("/projects", deps.Admin.ListProjects)
	admin.PUT("/projects/:id/status", deps.Admin.SetProjectStatus)
	admin.POST("/users", deps.Admin.CreateUser)
	admin.GET("/users", deps.Admin.ListUsers)
	admin.PUT("/users/:id/assignments", deps.Admin.UpdateUserAssignments)
	admin.PUT("/users/:id/status", deps.Admin.SetUserStatus)
}
