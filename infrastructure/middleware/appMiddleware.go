package middlewares

import (
	"facegate.io/application/interfaces"
	"github.com/gin-gonic/gin"
)

// AppContextMiddleware seeds the per-request ApplicationContext controllers
// read from. The device id header scopes the per-device session quota.
func AppContextMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("AppContext", &interfaces.ApplicationContext[any]{
			Ctx:      ctx,
			Keys:     ctx.Keys,
			Header:   ctx.Request.Header,
			DeviceID: ctx.Request.Header.Get("X-Device-Id"),
		})
		ctx.Next()
	}
}
