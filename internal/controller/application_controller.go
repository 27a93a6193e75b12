package controller

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ApplicationController 处理培训申请的审批流程
type ApplicationController struct {
	ApplicationService *service.ApplicationService
}

func NewApplicationController(applicationService *service.ApplicationService) *ApplicationController {
	return &ApplicationController{ApplicationService: applicationService}
}

// @Summary 申请培训
// @Tags 培训申请
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param application body service.ApplyRequest true "申请信息"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/apply [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.ApplyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	app, err := c.ApplicationService.Apply(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, app)
}

// @Summary 批准培训申请
// @Description 批准时重新检查名额
// @Tags 培训申请
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Param body body service.ApproveRequest false "备注"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/applications/{id}/approve [post]
func (c *ApplicationController) Approve(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.ApproveRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	app, err := c.ApplicationService.Approve(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, app)
}

// @Summary 拒绝培训申请
// @Tags 培训申请
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Param body body service.RejectRequest false "拒绝原因"
// @Success 200 {object} util.Response
// @Router /api/applications/{id}/reject [post]
func (c *ApplicationController) Reject(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.RejectRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	app, err := c.ApplicationService.Reject(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, app)
}

// @Summary 取消培训申请
// @Tags 培训申请
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Param body body service.CancelRequest false "取消原因"
// @Success 200 {object} util.Response
// @Router /api/applications/{id}/cancel [post]
func (c *ApplicationController) Cancel(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.CancelRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	app, err := c.ApplicationService.Cancel(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, app)
}

// @Summary 获取培训申请
// @Tags 培训申请
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Success 200 {object} util.Response
// @Router /api/applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	app, err := c.ApplicationService.GetApplication(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, app)
}

// @Summary 培训申请列表
// @Tags 培训申请
// @Produce json
// @Security BearerAuth
// @Param training_id query int false "培训ID"
// @Param employee_id query int false "员工ID"
// @Param status query string false "状态"
// @Success 200 {object} util.Response
// @Router /api/applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	page, limit := util.Pagination(ctx)
	filter := repository.ApplicationFilter{
		TrainingID: util.QueryUint(ctx, "training_id"),
		EmployeeID: util.QueryUint(ctx, "employee_id"),
		Status:     model.ApplicationStatus(ctx.Query("status")),
	}

	apps, total, err := c.ApplicationService.ListApplications(ctx.Request.Context(), actor, filter, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Page(ctx, apps, total, page, limit)
}
