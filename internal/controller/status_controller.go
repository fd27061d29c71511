package controller

import (
	"taskora_backend/internal/model"
	"taskora_backend/internal/service"
	"taskora_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatusController struct {
	StatusService *service.StatusService
}

func NewStatusController(statusService *service.StatusService) *StatusController {
	return &StatusController{StatusService: statusService}
}

// StatusRequest 单个状态定义
// swagger:model StatusRequest
type StatusRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color" binding:"omitempty,max=20"`
	Order int    `json:"order"`
}

// CreateStatusesRequest 批量创建状态请求
// swagger:model CreateStatusesRequest
type CreateStatusesRequest struct {
	Statuses []StatusRequest `json:"statuses" binding:"required,min=1,dive"`
}

// CreateStatuses godoc
// @Summary 批量创建状态
// @Description 管理员维护全局状态字典
// @Tags 状态
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateStatusesRequest true "状态列表"
// @Success 201 {object} util.Response "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/statuses [post]
func (c *StatusController) CreateStatuses(ctx *gin.Context) {
	var req CreateStatusesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	statuses := make([]model.Status, 0, len(req.Statuses))
	for _, s := range req.Statuses {
		statuses = append(statuses, model.Status{
			Name:  s.Name,
			Color: s.Color,
			Order: s.Order,
		})
	}

	if err := c.StatusService.CreateMany(ctx.Request.Context(), statuses); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"count": len(statuses)})
}

// ListStatuses godoc
// @Summary 状态列表
// @Tags 状态
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Status} "成功"
// @Router /api/statuses [get]
func (c *StatusController) ListStatuses(ctx *gin.Context) {
	statuses, err := c.StatusService.List(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"statuses": statuses})
}
