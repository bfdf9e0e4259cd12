package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"account-service/pkg/common/config"
	apperrors "account-service/pkg/common/errors"
	"account-service/pkg/core/token"
	"account-service/pkg/web/model"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"
)

// IdentityKey 请求上下文中存放已校验身份的键
const IdentityKey = "identity"

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		latency := time.Since(start)

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
		)

		if err := ctx.Errors.Last(); err != nil {
			hlog.CtxErrorf(c, "%s %s failed: %v", ctx.Method(), ctx.Path(), err.Err)
		}
	}
}

// RecoveryMiddleware 异常捕获，非生产环境返回错误详情与堆栈
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())

				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				if cfg.IsProd() {
					ctx.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorRes{
						Message: apperrors.MsgServerError,
					})
				} else {
					ctx.AbortWithStatusJSON(http.StatusInternalServerError, map[string]interface{}{
						"success": false,
						"message": apperrors.MsgServerError,
						"error":   fmt.Sprintf("%v", err),
						"stack":   strings.Split(stack, "\n"),
					})
				}
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 跨域配置，"*" 放行全部来源
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	if corsConfig.AllowAll() {
		return cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    corsConfig.AllowMethods,
			AllowHeaders:    corsConfig.AllowHeaders,
			ExposeHeaders:   corsConfig.ExposeHeaders,
			MaxAge:          corsConfig.MaxAge,
		})
	}

	return cors.New(
		cors.Config{
			AllowOrigins:     corsConfig.AllowOrigins,
			AllowMethods:     corsConfig.AllowMethods,
			AllowHeaders:     corsConfig.AllowHeaders,
			ExposeHeaders:    corsConfig.ExposeHeaders,
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAge,
			AllowOriginFunc: func(origin string) bool {
				for _, domain := range corsConfig.TrustedDomains {
					if strings.Contains(origin, domain) {
						return true
					}
				}
				return false
			},
		},
	)
}

// BodyLimitMiddleware 请求体大小限制
func BodyLimitMiddleware(maxBodySize int64) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if maxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > maxBodySize {
			hlog.CtxWarnf(c, "request body exceeds max size path=%s", ctx.Path())
			ctx.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, model.ErrorRes{
				Message: "Request body too large",
			})
			return
		}
		ctx.Next(c)
	}
}

type TokenVerifier interface {
	Verify(tokenString string) (token.Identity, error)
}

// BearerAuthMiddleware 校验 Bearer 令牌（也接受 token 查询参数），
// 所有校验失败统一返回同一个 401
func BearerAuthMiddleware(verifier TokenVerifier) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		raw := ExtractToken(ctx)
		if raw == "" {
			abortUnauthorized(ctx, apperrors.ErrMissingToken)
			return
		}

		identity, err := verifier.Verify(raw)
		if err != nil {
			hlog.CtxDebugf(c, "token rejected path=%s", ctx.Path())
			abortUnauthorized(ctx, apperrors.ErrInvalidToken)
			return
		}

		ctx.Set(IdentityKey, identity)
		ctx.Next(c)
	}
}

// ExtractToken 优先读取 Authorization 头
func ExtractToken(ctx *app.RequestContext) string {
	if header := strings.Fields(string(ctx.GetHeader("Authorization"))); len(header) == 2 && strings.EqualFold(header[0], "Bearer") {
		return header[1]
	}
	return ctx.Query("token")
}

func IdentityFrom(ctx *app.RequestContext) (token.Identity, bool) {
	v, ok := ctx.Get(IdentityKey)
	if !ok {
		return token.Identity{}, false
	}
	identity, ok := v.(token.Identity)
	return identity, ok
}

func abortUnauthorized(ctx *app.RequestContext, err *apperrors.Error) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorRes{Message: err.Message})
}
