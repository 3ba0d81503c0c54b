package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/errcode"
	"github.com/docgate-io/docgate/internal/pkg/response"
	"github.com/docgate-io/docgate/internal/service"
)

type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type createClientRequest struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain"`
}

func (h *AdminHandler) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "name is required")
		return
	}
	client, err := h.admin.CreateClient(c.Request.Context(), req.Name, req.Domain, getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, client)
}

func (h *AdminHandler) ListClients(c *gin.Context) {
	clients, err := h.admin.ListClients(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, clients)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminHandler) SetClientStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "status is required")
		return
	}
	if err := h.admin.SetClientStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

type createProjectRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code"`
}

func (h *AdminHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "client_id and name are required")
		return
	}
	project, err := h.admin.CreateProject(c.Request.Context(), req.ClientID, req.Name, req.Code, getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, project)
}

func (h *AdminHandler) ListProjects(c *gin.Context) {
	projects, err := h.admin.ListProjects(c.Request.Context(), c.Query("client_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, projects)
}

func (h *AdminHandler) SetProjectStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "status is required")
		return
	}
	if err := h.admin.SetProjectStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

type createUserRequest struct {
	Email      string   `json:"email" binding:"required"`
	Name       string   `json:"name"`
	Password   string   `json:"password" binding:"required"`
	Role       string   `json:"role" binding:"required"`
	ClientIDs  []string `json:"client_ids"`
	ProjectIDs []string `json:"project_ids"`
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "email, password and role are required")
		return
	}
	user, err := h.admin.CreateUser(c.Request.Context(), req.Email, req.Name, req.Password, model.Role(req.Role), req.ClientIDs, req.ProjectIDs)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, users)
}

type assignmentsRequest struct {
	ClientIDs  []string `json:"client_ids"`
	ProjectIDs []string `json:"project_ids"`
}

func (h *AdminHandler) UpdateUserAssignments(c *gin.Context) {
	var req assignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid body")
		return
	}
	if err := h.admin.UpdateUserAssignments(c.Request.Context(), c.Param("id"), req.ClientIDs, req.ProjectIDs); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "status is required")
		return
	}
	if err := h.admin.SetUserStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
