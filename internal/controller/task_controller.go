package controller

import (
	"errors"
	"time"

	"taskora_backend/internal/service"
	"taskora_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TaskController 处理任务相关的API请求
type TaskController struct {
	TaskService *service.TaskService
}

func NewTaskController(taskService *service.TaskService) *TaskController {
	return &TaskController{TaskService: taskService}
}

// TaskRequest 任务创建/更新请求
// swagger:model TaskRequest
type TaskRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	ProjectUUID string     `json:"projectUuid" binding:"required,uuid"`
	StatusUUID  string     `json:"statusUuid" binding:"omitempty,uuid"`
	TagUUIDs    []string   `json:"tagUuids" binding:"omitempty,dive,uuid"`
}

func (r *TaskRequest) toInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		Name:        r.Name,
		Description: r.Description,
		DueDate:     r.DueDate,
		ProjectUUID: r.ProjectUUID,
		StatusUUID:  r.StatusUUID,
		TagUUIDs:    r.TagUUIDs,
	}
}

func taskError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTaskNotFound),
		errors.Is(err, util.ErrProjectNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrStatusNotFound),
		errors.Is(err, util.ErrTagNotFound):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreateTask godoc
// @Summary 创建任务
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TaskRequest true "任务信息"
// @Success 201 {object} util.Response{data=model.Task} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "项目不存在"
// @Router /api/tasks [post]
func (c *TaskController) CreateTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req TaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.TaskService.Create(ctx.Request.Context(), user.UserUUID, req.toInput())
	if err != nil {
		taskError(ctx, err)
		return
	}

	util.Created(ctx, task)
}

// ListTasks godoc
// @Summary 任务列表
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Task} "成功"
// @Router /api/tasks [get]
func (c *TaskController) ListTasks(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	tasks, err := c.TaskService.List(ctx.Request.Context(), user.UserUUID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"tasks": tasks})
}

// GetTask godoc
// @Summary 任务详情
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "任务UUID"
// @Success 200 {object} util.Response{data=model.Task} "成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/tasks/{uuid} [get]
func (c *TaskController) GetTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	task, err := c.TaskService.Get(ctx.Param("uuid"), user.UserUUID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, task)
}

// UpdateTask godoc
// @Summary 更新任务
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "任务UUID"
// @Param request body TaskRequest true "任务信息"
// @Success 200 {object} util.Response{data=model.Task} "成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/tasks/{uuid} [put]
func (c *TaskController) UpdateTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req TaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.TaskService.Update(ctx.Request.Context(), ctx.Param("uuid"), user.UserUUID, req.toInput())
	if err != nil {
		taskError(ctx, err)
		return
	}

	util.Success(ctx, task)
}

// UpdateTaskStatusRequest 状态更新请求
// swagger:model UpdateTaskStatusRequest
type UpdateTaskStatusRequest struct {
	StatusUUID string `json:"statusUuid" binding:"required,uuid"`
}

// UpdateTaskStatus godoc
// @Summary 更新任务状态
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "任务UUID"
// @Param request body UpdateTaskStatusRequest true "新状态"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/tasks/{uuid}/status [patch]
func (c *TaskController) UpdateTaskStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateTaskStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.TaskService.UpdateStatus(ctx.Request.Context(), ctx.Param("uuid"), user.UserUUID, req.StatusUUID); err != nil {
		taskError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "status updated"})
}

// DeleteTask godoc
// @Summary 删除任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "任务UUID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/tasks/{uuid} [delete]
func (c *TaskController) DeleteTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.TaskService.Delete(ctx.Request.Context(), ctx.Param("uuid"), user.UserUUID); err != nil {
		taskError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "task deleted"})
}
