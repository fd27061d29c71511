package controller

import (
	"errors"

	"taskora_backend/internal/model"
	"taskora_backend/internal/service"
	"taskora_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProjectController struct {
	ProjectService *service.ProjectService
	TaskService    *service.TaskService
}

func NewProjectController(projectService *service.ProjectService, taskService *service.TaskService) *ProjectController {
	return &ProjectController{
		ProjectService: projectService,
		TaskService:    taskService,
	}
}

// ProjectRequest 项目创建/更新请求
// swagger:model ProjectRequest
type ProjectRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Color       string `json:"color" binding:"omitempty,max=20"`
}

// CreateProject godoc
// @Summary 创建项目
// @Tags 项目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProjectRequest true "项目信息"
// @Success 201 {object} util.Response{data=model.Project} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/projects [post]
func (c *ProjectController) CreateProject(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		UserUUID:    user.UserUUID,
	}

	if err := c.ProjectService.Create(ctx.Request.Context(), project); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, project)
}

// ListProjects godoc
// @Summary 项目列表
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Project} "成功"
// @Router /api/projects [get]
func (c *ProjectController) ListProjects(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	projects, err := c.ProjectService.List(ctx.Request.Context(), user.UserUUID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"projects": projects})
}

// GetProject godoc
// @Summary 项目详情
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "项目UUID"
// @Success 200 {object} util.Response{data=model.Project} "成功"
// @Failure 404 {object} util.Response "项目不存在"
// @Router /api/projects/{uuid} [get]
func (c *ProjectController) GetProject(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	project, err := c.ProjectService.Get(ctx.Param("uuid"), user.UserUUID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, project)
}

// GetProjectTasks godoc
// @Summary 项目下的任务列表
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "项目UUID"
// @Success 200 {object} util.Response{data=[]model.Task} "成功"
// @Failure 404 {object} util.Response "项目不存在"
// @Router /api/projects/{uuid}/tasks [get]
func (c *ProjectController) GetProjectTasks(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	tasks, err := c.TaskService.ListByProject(ctx.Param("uuid"), user.UserUUID)
	if err != nil {
		if errors.Is(err, util.ErrProjectNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"tasks": tasks})
}

// UpdateProject godoc
// @Summary 更新项目
// @Tags 项目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "项目UUID"
// @Param request body ProjectRequest true "项目信息"
// @Success 200 {object} util.Response{data=model.Project} "成功"
// @Failure 404 {object} util.Response "项目不存在"
// @Router /api/projects/{uuid} [put]
func (c *ProjectController) UpdateProject(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	project, err := c.ProjectService.Update(ctx.Request.Context(), ctx.Param("uuid"), user.UserUUID, req.Name, req.Description, req.Color)
	if err != nil {
		if errors.Is(err, util.ErrProjectNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, project)
}

// DeleteProject godoc
// @Summary 删除项目（连同其任务）
// @Tags 项目
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "项目UUID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "项目不存在"
// @Router /api/projects/{uuid} [delete]
func (c *ProjectController) DeleteProject(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ProjectService.Delete(ctx.Request.Context(), ctx.Param("uuid"), user.UserUUID); err != nil {
		if errors.Is(err, util.ErrProjectNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "project deleted"})
}
