package controller

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TrainingController struct {
	TrainingService *service.TrainingService
}

func NewTrainingController(trainingService *service.TrainingService) *TrainingController {
	return &TrainingController{TrainingService: trainingService}
}

// @Summary 创建培训
// @Tags 培训
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param training body service.CreateTrainingRequest true "培训信息"
// @Success 201 {object} util.Response
// @Router /api/trainings [post]
func (c *TrainingController) CreateTraining(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.CreateTrainingRequest
	if !bindJSON(ctx, &req) {
		return
	}

	training, err := c.TrainingService.CreateTraining(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, service.NewTrainingView(training))
}

// @Summary 更新培训
// @Description 停用培训请使用 DELETE 接口
// @Tags 培训
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "培训ID"
// @Param training body service.UpdateTrainingRequest true "需要更新的字段"
// @Success 200 {object} util.Response
// @Router /api/trainings/{id} [put]
func (c *TrainingController) UpdateTraining(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateTrainingRequest
	if !bindJSON(ctx, &req) {
		return
	}

	training, err := c.TrainingService.UpdateTraining(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, service.NewTrainingView(training))
}

// @Summary 获取培训详情
// @Tags 培训
// @Produce json
// @Security BearerAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /api/trainings/{id} [get]
func (c *TrainingController) GetTraining(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	training, err := c.TrainingService.GetTraining(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, service.NewTrainingView(training))
}

// @Summary 培训列表
// @Tags 培训
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态 active/inactive"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/trainings [get]
func (c *TrainingController) ListTrainings(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)

	trainings, total, err := c.TrainingService.ListTrainings(ctx.Request.Context(), model.TrainingStatus(ctx.Query("status")), page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	views := make([]service.TrainingView, 0, len(trainings))
	for i := range trainings {
		views = append(views, service.NewTrainingView(&trainings[i]))
	}
	util.Page(ctx, views, total, page, limit)
}

// @Summary 停用培训
// @Description 培训置为inactive，所有待审批的申请自动取消
// @Tags 培训
// @Produce json
// @Security BearerAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /api/trainings/{id} [delete]
func (c *TrainingController) DeactivateTraining(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	training, cancelled, err := c.TrainingService.DeactivateTraining(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"training":               service.NewTrainingView(training),
		"cancelled_applications": cancelled,
	})
}

// @Summary 添加培训课时
// @Tags 培训
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "培训ID"
// @Param session body service.SessionRequest true "课时信息"
// @Success 201 {object} util.Response
// @Router /api/trainings/{id}/sessions [post]
func (c *TrainingController) CreateSession(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.SessionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	session, err := c.TrainingService.CreateSession(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary 培训课时列表
// @Tags 培训
// @Produce json
// @Security BearerAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /api/trainings/{id}/sessions [get]
func (c *TrainingController) ListSessions(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	sessions, err := c.TrainingService.ListSessions(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, sessions)
}

// @Summary 更新培训课时
// @Tags 培训
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "培训ID"
// @Param sessionId path int true "课时ID"
// @Param session body service.SessionRequest true "课时信息"
// @Success 200 {object} util.Response
// @Router /api/trainings/{id}/sessions/{sessionId} [put]
func (c *TrainingController) UpdateSession(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	sessionID, ok := util.ParseIDParam(ctx, "sessionId")
	if !ok {
		return
	}

	var req service.SessionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	session, err := c.TrainingService.UpdateSession(ctx.Request.Context(), actor, id, sessionID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary 删除培训课时
// @Tags 培训
// @Produce json
// @Security BearerAuth
// @Param id path int true "培训ID"
// @Param sessionId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/trainings/{id}/sessions/{sessionId} [delete]
func (c *TrainingController) DeleteSession(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	sessionID, ok := util.ParseIDParam(ctx, "sessionId")
	if !ok {
		return
	}

	if err := c.TrainingService.DeleteSession(ctx.Request.Context(), actor, id, sessionID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "课时已删除"})
}
