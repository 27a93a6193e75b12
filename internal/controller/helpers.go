package controller

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentActor 读取认证中间件写入的调用者，缺失时直接返回401
func currentActor(ctx *gin.Context) (model.Actor, bool) {
	actor, ok := util.ActorFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
	}
	return actor, ok
}

func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		util.RespondError(ctx, util.BindingError(err))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body for endpoints whose payload is optional.
func bindOptionalJSON(ctx *gin.Context, req interface{}) bool {
	if ctx.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(ctx, req)
}
