package middlewares

import (
	apperrors "facegate.io/application/appErrors"
	"facegate.io/infrastructure/useragent"
	"github.com/gin-gonic/gin"
)

func UserAgentMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		agent := useragent.ParseUserAgent(ctx.Request.UserAgent())
		if agent.Bot {
			apperrors.ClientError(ctx, "unsupported user agent", nil, nil, ctx.Request.Header.Get("X-Device-Id"))
			return
		}
		ctx.Next()
	}
}
