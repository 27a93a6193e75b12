package controller

import (
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController 提供缓存计数的核对与修复
type AdminController struct {
	ReconcileService *service.ReconcileService
}

func NewAdminController(reconcileService *service.ReconcileService) *AdminController {
	return &AdminController{ReconcileService: reconcileService}
}

// @Summary 核对课程报名计数
// @Description 比较缓存计数与报名记录，不做修改
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id}/reconcile [get]
func (c *AdminController) CheckCourse(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	check, err := c.ReconcileService.CheckCourse(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, check)
}

// @Summary 修复所有缓存计数
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/reconcile [post]
func (c *AdminController) ReconcileAll(ctx *gin.Context) {
	report, err := c.ReconcileService.ReconcileAll(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, report)
}
