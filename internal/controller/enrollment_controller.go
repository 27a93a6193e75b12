package controller

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EnrollmentController 处理课程报名与学习进度
type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// @Summary 报名课程
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param enrollment body service.EnrollRequest true "报名信息"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.EnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}

	row, err := c.EnrollmentService.Enroll(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, row)
}

// @Summary 取消课程报名
// @Description 已完成的课程不能取消
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param enrollment body service.UnenrollRequest true "用户与课程"
// @Success 200 {object} util.Response
// @Router /api/unenroll [post]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.UnenrollRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.EnrollmentService.Unenroll(ctx.Request.Context(), actor, req); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "已取消报名"})
}

// @Summary 按学习计划报名
// @Tags 学习计划
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Param member body service.PlanMemberRequest true "用户"
// @Success 200 {object} util.Response
// @Router /api/plans/{id}/enroll [post]
func (c *EnrollmentController) EnrollInPlan(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	planID, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.PlanMemberRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.EnrollmentService.EnrollInPlan(ctx.Request.Context(), actor, planID, req.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 退出学习计划
// @Description 只移除由该计划产生且未完成的课程记录
// @Tags 学习计划
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Param member body service.PlanMemberRequest true "用户"
// @Success 200 {object} util.Response
// @Router /api/plans/{id}/unenroll [post]
func (c *EnrollmentController) UnenrollFromPlan(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	planID, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.PlanMemberRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.EnrollmentService.UnenrollFromPlan(ctx.Request.Context(), actor, planID, req.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 学习进度列表
// @Description 非HR用户只能查看自己的记录
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "用户ID"
// @Param course_id query int false "课程ID"
// @Param status query string false "状态"
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *EnrollmentController) ListProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	page, limit := util.Pagination(ctx)
	filter := repository.ProgressFilter{
		UserID:   util.QueryUint(ctx, "user_id"),
		CourseID: util.QueryUint(ctx, "course_id"),
		Status:   model.ProgressStatus(ctx.Query("status")),
	}

	rows, total, err := c.EnrollmentService.ListProgress(ctx.Request.Context(), actor, filter, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Page(ctx, rows, total, page, limit)
}

// @Summary 获取学习进度
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} util.Response
// @Router /api/progress/{id} [get]
func (c *EnrollmentController) GetProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	row, err := c.EnrollmentService.GetProgress(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, row)
}

// @Summary 更新学习进度
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Param progress body service.UpdateProgressRequest true "进度"
// @Success 200 {object} util.Response
// @Router /api/progress/{id} [put]
func (c *EnrollmentController) UpdateProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateProgressRequest
	if !bindJSON(ctx, &req) {
		return
	}

	row, err := c.EnrollmentService.UpdateProgress(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, row)
}

// @Summary 标记课程完成
// @Description 重复调用不会报错
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Param body body service.CompleteRequest false "成绩"
// @Success 200 {object} util.Response
// @Router /api/progress/{id}/complete [post]
func (c *EnrollmentController) Complete(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.CompleteRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	row, err := c.EnrollmentService.Complete(ctx.Request.Context(), actor, id, req.Score)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, row)
}

// @Summary 重置学习进度
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} util.Response
// @Router /api/progress/{id}/reset [post]
func (c *EnrollmentController) ResetProgress(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	row, err := c.EnrollmentService.ResetProgress(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, row)
}
