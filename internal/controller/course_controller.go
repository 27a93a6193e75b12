package controller

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// @Summary 创建课程
// @Description HR管理员创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course body service.CreateCourseRequest true "课程信息"
// @Success 201 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.CreateCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param course body service.UpdateCourseRequest true "需要更新的字段"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary 获取课程详情
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CourseService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态"
// @Param category query string false "分类"
// @Param level query string false "难度"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := repository.CourseFilter{
		Status:   model.CourseStatus(ctx.Query("status")),
		Category: model.CourseCategory(ctx.Query("category")),
		Level:    model.CourseLevel(ctx.Query("level")),
	}

	courses, total, err := c.CourseService.ListCourses(ctx.Request.Context(), filter, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Page(ctx, courses, total, page, limit)
}
