package controller

import (
	"errors"
	"hrm_backend/internal/repository"
	"hrm_backend/internal/service"
	"hrm_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CompletionController 处理培训结业、证书以及评价记录
type CompletionController struct {
	CompletionService *service.CompletionService
}

func NewCompletionController(completionService *service.CompletionService) *CompletionController {
	return &CompletionController{CompletionService: completionService}
}

// @Summary 登记培训结业
// @Description 关联的申请会被置为completed
// @Tags 培训结业
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param completion body service.CreateCompletionRequest true "结业信息"
// @Success 201 {object} util.Response
// @Router /api/completions [post]
func (c *CompletionController) CreateCompletion(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req service.CreateCompletionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	completion, err := c.CompletionService.CreateCompletion(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, completion)
}

// @Summary 获取结业记录
// @Tags 培训结业
// @Produce json
// @Security BearerAuth
// @Param id path int true "结业ID"
// @Success 200 {object} util.Response
// @Router /api/completions/{id} [get]
func (c *CompletionController) GetCompletion(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	completion, err := c.CompletionService.GetCompletion(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, completion)
}

// @Summary 结业记录列表
// @Tags 培训结业
// @Produce json
// @Security BearerAuth
// @Param employee_id query int false "员工ID"
// @Param training_id query int false "培训ID"
// @Success 200 {object} util.Response
// @Router /api/completions [get]
func (c *CompletionController) ListCompletions(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	page, limit := util.Pagination(ctx)
	filter := repository.CompletionFilter{
		EmployeeID: util.QueryUint(ctx, "employee_id"),
		TrainingID: util.QueryUint(ctx, "training_id"),
	}

	completions, total, err := c.CompletionService.ListCompletions(ctx.Request.Context(), actor, filter, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Page(ctx, completions, total, page, limit)
}

// @Summary 颁发证书
// @Description multipart表单，file字段可选
// @Tags 培训结业
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "结业ID"
// @Param issued_by formData string true "颁发机构"
// @Param issue_date formData string true "颁发日期 2006-01-02"
// @Param expiry_date formData string false "到期日期 2006-01-02"
// @Param file formData file false "证书文件"
// @Success 201 {object} util.Response
// @Router /api/completions/{id}/certificates [post]
func (c *CompletionController) IssueCertificate(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.IssueCertificateRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.RespondError(ctx, util.BindingError(err))
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		util.BadRequest(ctx, "无法读取上传文件")
		return
	}

	cert, err := c.CompletionService.IssueCertificate(ctx.Request.Context(), actor, id, req, file)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, cert)
}

// @Summary 证书列表
// @Tags 培训结业
// @Produce json
// @Security BearerAuth
// @Param id path int true "结业ID"
// @Success 200 {object} util.Response
// @Router /api/completions/{id}/certificates [get]
func (c *CompletionController) ListCertificates(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	certs, err := c.CompletionService.ListCertificates(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, certs)
}

// @Summary 提交培训反馈
// @Tags 培训评价
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Param feedback body service.FeedbackRequest true "反馈"
// @Success 200 {object} util.Response
// @Router /api/applications/{id}/feedback [put]
func (c *CompletionController) SubmitFeedback(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.FeedbackRequest
	if !bindJSON(ctx, &req) {
		return
	}

	fb, err := c.CompletionService.SubmitFeedback(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, fb)
}

// @Summary 获取培训反馈
// @Tags 培训评价
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Success 200 {object} util.Response
// @Router /api/applications/{id}/feedback [get]
func (c *CompletionController) GetFeedback(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	fb, err := c.CompletionService.GetFeedback(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, fb)
}

// @Summary 提交讲师评估
// @Tags 培训评价
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Param assessment body service.AssessmentRequest true "评估"
// @Success 200 {object} util.Response
// @Router /api/applications/{id}/assessment [put]
func (c *CompletionController) SubmitAssessment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.AssessmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	assessment, err := c.CompletionService.SubmitAssessment(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

// @Summary 获取讲师评估
// @Tags 培训评价
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Success 200 {object} util.Response
// @Router /api/applications/{id}/assessment [get]
func (c *CompletionController) GetAssessment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	assessment, err := c.CompletionService.GetAssessment(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

// @Summary 提交绩效备注
// @Tags 培训评价
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Param note body service.PerformanceNoteRequest true "备注"
// @Success 200 {object} util.Response
// @Router /api/applications/{id}/performance-note [put]
func (c *CompletionController) SubmitPerformanceNote(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.PerformanceNoteRequest
	if !bindJSON(ctx, &req) {
		return
	}

	note, err := c.CompletionService.SubmitPerformanceNote(ctx.Request.Context(), actor, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, note)
}

// @Summary 获取绩效备注
// @Tags 培训评价
// @Produce json
// @Security BearerAuth
// @Param id path int true "申请ID"
// @Success 200 {object} util.Response
// @Router /api/applications/{id}/performance-note [get]
func (c *CompletionController) GetPerformanceNote(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	note, err := c.CompletionService.GetPerformanceNote(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, note)
}
