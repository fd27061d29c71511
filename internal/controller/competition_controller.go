package controller

import (
	"net/http"

	"taskora_backend/internal/service"
	"taskora_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CompetitionController 限时竞赛接口
type CompetitionController struct {
	CompetitionService *service.CompetitionService
}

func NewCompetitionController(competitionService *service.CompetitionService) *CompetitionController {
	return &CompetitionController{CompetitionService: competitionService}
}

// StartChallenge godoc
// @Summary 开启竞赛
// @Description 管理员开启（或重开）一轮竞赛，清空中奖名单
// @Tags 竞赛
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "权限不足"
// @Failure 500 {object} util.Response "协调存储不可用"
// @Router /api/competition/start [post]
func (c *CompetitionController) StartChallenge(ctx *gin.Context) {
	if err := c.CompetitionService.StartChallenge(ctx.Request.Context()); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Challenge started"})
}

// SubmitAnswerRequest 答题请求
// swagger:model SubmitAnswerRequest
type SubmitAnswerRequest struct {
	AnswerID int `json:"answerId" binding:"required"`
}

// SubmitAnswer godoc
// @Summary 提交答案
// @Description 提交竞赛答案，每个用户只有一次机会；七种结果见outcome字段
// @Tags 竞赛
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitAnswerRequest true "答案"
// @Success 202 {object} util.Response{data=map[string]interface{}} "已受理"
// @Failure 410 {object} util.Response "竞赛已结束"
// @Failure 412 {object} util.Response "竞赛未开始"
// @Failure 429 {object} util.Response "名单锁竞争，请稍后重试"
// @Failure 500 {object} util.Response "协调存储不可用"
// @Router /api/competition/submit-answer [post]
func (c *CompetitionController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.CompetitionService.Submit(ctx.Request.Context(), user.UserUUID, req.AnswerID)
	if err != nil {
		// 基础设施故障，对外只给可重试的笼统错误
		util.Error(ctx, http.StatusInternalServerError, "Service temporarily unavailable, please retry")
		return
	}

	body := gin.H{
		"outcome": outcome,
		"message": outcomeMessage(outcome),
	}

	switch outcome {
	case service.OutcomeNotStarted:
		util.Error(ctx, http.StatusPreconditionFailed, outcomeMessage(outcome))
	case service.OutcomeEnded:
		util.Error(ctx, http.StatusGone, outcomeMessage(outcome))
	case service.OutcomeRetryLater:
		util.Error(ctx, http.StatusTooManyRequests, outcomeMessage(outcome))
	default:
		util.Accepted(ctx, body)
	}
}

// GetWinners godoc
// @Summary 查询中奖名单
// @Description 返回当前名单，按入选顺序排列
// @Tags 竞赛
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=map[string]interface{}} "成功"
// @Failure 500 {object} util.Response "协调存储不可用"
// @Router /api/competition/winners [get]
func (c *CompetitionController) GetWinners(ctx *gin.Context) {
	winners, err := c.CompetitionService.GetWinners(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if winners == nil {
		winners = []string{}
	}
	util.Success(ctx, gin.H{"winners": winners})
}

// EndChallenge godoc
// @Summary 结束竞赛
// @Description 管理员结束竞赛，此后所有提交返回 challenge_ended
// @Tags 竞赛
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "权限不足"
// @Failure 500 {object} util.Response "协调存储不可用"
// @Router /api/competition/end [post]
func (c *CompetitionController) EndChallenge(ctx *gin.Context) {
	if err := c.CompetitionService.EndChallenge(ctx.Request.Context()); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Challenge has been ended"})
}

func outcomeMessage(outcome service.SubmissionOutcome) string {
	switch outcome {
	case service.OutcomeNotStarted:
		return "Challenge not started."
	case service.OutcomeEnded:
		return "The challenge has ended."
	case service.OutcomeAlreadyAnswered:
		return "You have already submitted an answer."
	case service.OutcomeNotWinner:
		return "Incorrect answer."
	case service.OutcomeRetryLater:
		return "Try again later."
	case service.OutcomeTooLate:
		return "You answered too late."
	case service.OutcomeWinner:
		return "Congratulations! You won!"
	default:
		return string(outcome)
	}
}
