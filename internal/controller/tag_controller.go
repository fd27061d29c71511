package controller

import (
	"errors"

	"taskora_backend/internal/model"
	"taskora_backend/internal/service"
	"taskora_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TagController struct {
	TagService *service.TagService
}

func NewTagController(tagService *service.TagService) *TagController {
	return &TagController{TagService: tagService}
}

// TagRequest 标签创建/更新请求
// swagger:model TagRequest
type TagRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color" binding:"omitempty,max=20"`
}

// CreateTag godoc
// @Summary 创建标签
// @Tags 标签
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TagRequest true "标签信息"
// @Success 201 {object} util.Response{data=model.Tag} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/tags [post]
func (c *TagController) CreateTag(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req TagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tag := &model.Tag{
		Name:     req.Name,
		Color:    req.Color,
		UserUUID: user.UserUUID,
	}

	if err := c.TagService.Create(ctx.Request.Context(), tag); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, tag)
}

// ListTags godoc
// @Summary 标签列表
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Tag} "成功"
// @Router /api/tags [get]
func (c *TagController) ListTags(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	tags, err := c.TagService.List(ctx.Request.Context(), user.UserUUID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"tags": tags})
}

// UpdateTag godoc
// @Summary 更新标签
// @Tags 标签
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "标签UUID"
// @Param request body TagRequest true "标签信息"
// @Success 200 {object} util.Response{data=model.Tag} "成功"
// @Failure 404 {object} util.Response "标签不存在"
// @Router /api/tags/{uuid} [put]
func (c *TagController) UpdateTag(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req TagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tag, err := c.TagService.Update(ctx.Request.Context(), ctx.Param("uuid"), user.UserUUID, req.Name, req.Color)
	if err != nil {
		if errors.Is(err, util.ErrTagNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, tag)
}

// DeleteTag godoc
// @Summary 删除标签
// @Tags 标签
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "标签UUID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "标签不存在"
// @Router /api/tags/{uuid} [delete]
func (c *TagController) DeleteTag(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.TagService.Delete(ctx.Request.Context(), ctx.Param("uuid"), user.UserUUID); err != nil {
		if errors.Is(err, util.ErrTagNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "tag deleted"})
}
