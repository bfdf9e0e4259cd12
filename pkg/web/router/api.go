package router

import (
	"account-service/pkg/common/config"
	"account-service/pkg/core/credential"
	"account-service/pkg/core/token"
	"account-service/pkg/web/handler"
	"account-service/pkg/web/middleware"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Dependencies 构建 Handler 所需的依赖
type Dependencies struct {
	Accounts handler.AccountStore
	Hasher   credential.Hasher
	Tokens   *token.Issuer
}

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, deps Dependencies) {
	healthHandler := handler.NewHealthCheckHandler()
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Hasher, deps.Tokens, cfg.IsDev())

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.BodyLimitMiddleware(cfg.Middleware.Security.MaxBodySize),
	)

	apiGroup := h.Group("/api")
	{
		apiGroup.GET("/health", healthHandler.HealthCheck)

		apiGroup.POST("/signup", accountHandler.Register)
		apiGroup.POST("/signin", accountHandler.Authenticate)
		apiGroup.POST("/logout", accountHandler.Logout)
		apiGroup.GET("/verify-token", middleware.BearerAuthMiddleware(deps.Tokens), accountHandler.VerifyIdentity)

		if cfg.Debug.ExposeAccountList {
			hlog.Warn("GET /api/users is enabled and lists every account without authentication")
			apiGroup.GET("/users", accountHandler.ListAccounts)
		}
	}

	h.NoRoute(handler.NotFound)
}
