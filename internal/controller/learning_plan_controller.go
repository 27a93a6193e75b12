package controller

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// LearningPlanController 处理学习计划的API请求
type LearningPlanController struct {
	PlanService *service.LearningPlanService
}

func NewLearningPlanController(planService *service.LearningPlanService) *LearningPlanController {
	return &LearningPlanController{PlanService: planService}
}

// @Summary 创建学习计划
// @Tags 学习计划
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body service.CreatePlanRequest true "学习计划"
// @Success 201 {object} util.Response
// @Router /api/plans [post]
func (c *LearningPlanController) CreatePlan(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.CreatePlanRequest
	if !bindJSON(ctx, &req) {
		return
	}

	plan, err := c.PlanService.CreatePlan(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, plan)
}

// @Summary 更新学习计划
// @Tags 学习计划
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Param plan body service.UpdatePlanRequest true "需要更新的字段"
// @Success 200 {object} util.Response
// @Router /api/plans/{id} [put]
func (c *LearningPlanController) UpdatePlan(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdatePlanRequest
	if !bindJSON(ctx, &req) {
		return
	}

	plan, err := c.PlanService.UpdatePlan(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, plan)
}

// @Summary 获取学习计划
// @Tags 学习计划
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Success 200 {object} util.Response
// @Router /api/plans/{id} [get]
func (c *LearningPlanController) GetPlan(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	plan, err := c.PlanService.GetPlan(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, plan)
}

// @Summary 学习计划列表
// @Tags 学习计划
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态"
// @Param user_id query int false "分配给该用户的计划"
// @Success 200 {object} util.Response
// @Router /api/plans [get]
func (c *LearningPlanController) ListPlans(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := repository.PlanFilter{
		Status: model.LearningPlanStatus(ctx.Query("status")),
		UserID: util.QueryUint(ctx, "user_id"),
	}

	plans, total, err := c.PlanService.ListPlans(ctx.Request.Context(), filter, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Page(ctx, plans, total, page, limit)
}

// @Summary 删除学习计划
// @Description 只能删除草稿状态且没有分配用户的计划
// @Tags 学习计划
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/plans/{id} [delete]
func (c *LearningPlanController) DeletePlan(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.PlanService.DeletePlan(ctx.Request.Context(), actor, id); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "学习计划已删除"})
}
