package routev1

import (
	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"facegate.io/application/utils"
	"github.com/gin-gonic/gin"
)

func LivenessRouter(router *gin.RouterGroup) {
	livenessRouter := router.Group("/liveness")
	{
		livenessRouter.POST("/session", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.CreateSessionDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, utils.GetStringPointer(ctx.GetHeader("X-Device-Id")))
				return
			}
			controller.CreateLivenessSession(&interfaces.ApplicationContext[dto.CreateSessionDTO]{
				Ctx:      ctx,
				Body:     &body,
				DeviceID: appContext.DeviceID,
			})
		})

		livenessRouter.POST("/session/:id/frame", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.SubmitFrameDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, utils.GetStringPointer(ctx.GetHeader("X-Device-Id")))
				return
			}
			controller.SubmitLivenessFrame(&interfaces.ApplicationContext[dto.SubmitFrameDTO]{
				Ctx:      ctx,
				Body:     &body,
				DeviceID: appContext.DeviceID,
				Param: map[string]any{
					"id": ctx.Param("id"),
				},
			})
		})

		livenessRouter.POST("/session/:id/finalize", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.FinalizeLivenessSession(&interfaces.ApplicationContext[any]{
				Ctx:      ctx,
				DeviceID: appContext.DeviceID,
				Param: map[string]any{
					"id": ctx.Param("id"),
				},
			})
		})

		livenessRouter.DELETE("/session/:id", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.AbandonLivenessSession(&interfaces.ApplicationContext[any]{
				Ctx:      ctx,
				DeviceID: appContext.DeviceID,
				Param: map[string]any{
					"id": ctx.Param("id"),
				},
			})
		})

		livenessRouter.POST("/session/:id/verify-batch", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.BatchVerifyDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, utils.GetStringPointer(ctx.GetHeader("X-Device-Id")))
				return
			}
			controller.BatchVerifyLiveness(&interfaces.ApplicationContext[dto.BatchVerifyDTO]{
				Ctx:      ctx,
				Body:     &body,
				DeviceID: appContext.DeviceID,
				Param: map[string]any{
					"id": ctx.Param("id"),
				},
			})
		})

		livenessRouter.POST("/verdict/redeem", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.RedeemVerdictTokenDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, utils.GetStringPointer(ctx.GetHeader("X-Device-Id")))
				return
			}
			controller.RedeemVerdictToken(&interfaces.ApplicationContext[dto.RedeemVerdictTokenDTO]{
				Ctx:      ctx,
				Body:     &body,
				DeviceID: appContext.DeviceID,
			})
		})
	}
}
