package controller

import (
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 学习计划完成度
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/plans/{id}/users/{userId} [get]
func (c *AnalyticsController) GetPlanProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	planID, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := util.ParseIDParam(ctx, "userId")
	if !ok {
		return
	}

	progress, err := c.AnalyticsService.PlanProgress(ctx.Request.Context(), actor, planID, userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary 连续学习天数
// @Description 最近30天内有学习记录的天数
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/users/{userId}/streak [get]
func (c *AnalyticsController) GetLearningStreak(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	userID, ok := util.ParseIDParam(ctx, "userId")
	if !ok {
		return
	}

	days, err := c.AnalyticsService.LearningStreak(ctx.Request.Context(), actor, userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"user_id":     userID,
		"streak_days": days,
		"window_days": service.StreakWindowDays,
	})
}

// @Summary 用户学习概况
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/users/{userId}/summary [get]
func (c *AnalyticsController) GetUserSummary(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	userID, ok := util.ParseIDParam(ctx, "userId")
	if !ok {
		return
	}

	summary, err := c.AnalyticsService.UserLearningSummary(ctx.Request.Context(), actor, userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary 培训统计
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param id path int true "培训ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/trainings/{id} [get]
func (c *AnalyticsController) GetTrainingStats(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	stats, err := c.AnalyticsService.TrainingStats(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary 课程统计
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/courses/{id} [get]
func (c *AnalyticsController) GetCourseAnalytics(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	stats, err := c.AnalyticsService.CourseAnalytics(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
