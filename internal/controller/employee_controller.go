package controller

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EmployeeController struct {
	EmployeeService *service.EmployeeService
}

func NewEmployeeController(employeeService *service.EmployeeService) *EmployeeController {
	return &EmployeeController{EmployeeService: employeeService}
}

// @Summary 创建员工档案
// @Tags 员工
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param employee body service.CreateEmployeeRequest true "员工信息"
// @Success 201 {object} util.Response
// @Router /api/employees [post]
func (c *EmployeeController) CreateEmployee(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.CreateEmployeeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	employee, err := c.EmployeeService.CreateEmployee(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, employee)
}

// @Summary 员工列表
// @Tags 员工
// @Produce json
// @Security BearerAuth
// @Param department query string false "部门"
// @Param status query string false "状态"
// @Success 200 {object} util.Response
// @Router /api/employees [get]
func (c *EmployeeController) ListEmployees(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := repository.EmployeeFilter{
		Department: ctx.Query("department"),
		Status:     model.EmployeeStatus(ctx.Query("status")),
	}

	employees, total, err := c.EmployeeService.ListEmployees(ctx.Request.Context(), filter, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Page(ctx, employees, total, page, limit)
}

// @Summary 员工与账号目录
// @Description 从认证服务拉取用户并与员工档案关联
// @Tags 员工
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /api/employees/directory [get]
func (c *EmployeeController) ListWithDirectory(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	rows, err := c.EmployeeService.ListWithDirectory(ctx.Request.Context(), actor, ctx.GetString("token"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, rows)
}

// @Summary 获取员工档案
// @Tags 员工
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Success 200 {object} util.Response
// @Router /api/employees/{id} [get]
func (c *EmployeeController) GetEmployee(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	employee, err := c.EmployeeService.GetEmployee(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, employee)
}

// @Summary 更新员工档案
// @Tags 员工
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Param employee body service.UpdateEmployeeRequest true "需要更新的字段"
// @Success 200 {object} util.Response
// @Router /api/employees/{id} [put]
func (c *EmployeeController) UpdateEmployee(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateEmployeeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	employee, err := c.EmployeeService.UpdateEmployee(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, employee)
}

// @Summary 删除员工档案
// @Tags 员工
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Success 200 {object} util.Response
// @Router /api/employees/{id} [delete]
func (c *EmployeeController) DeleteEmployee(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.EmployeeService.DeleteEmployee(ctx.Request.Context(), actor, id); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "员工档案已删除"})
}

// @Summary 上传员工照片
// @Tags 员工
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Param photo formData file true "照片"
// @Success 200 {object} util.Response
// @Router /api/employees/{id}/photo [post]
func (c *EmployeeController) UploadPhoto(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := ctx.FormFile("photo")
	if err != nil {
		util.BadRequest(ctx, "请选择要上传的照片")
		return
	}

	employee, err := c.EmployeeService.UploadPhoto(ctx.Request.Context(), actor, id, file)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, employee)
}
