package handler

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	apperrors "account-service/pkg/common/errors"
	core "account-service/pkg/core/account/model"
	"account-service/pkg/core/account/service"
	"account-service/pkg/core/credential"
	"account-service/pkg/web/middleware"
	"account-service/pkg/web/model"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type AccountStore interface {
	Insert(ctx context.Context, draft core.Draft) (core.Account, error)
	FindByUsername(ctx context.Context, username string) (core.Account, error)
	FindByID(ctx context.Context, id string) (core.Account, error)
	ListAll(ctx context.Context) ([]core.Account, error)
}

type TokenIssuer interface {
	Issue(accountID, email, username string) (string, error)
}

type AccountHandler struct {
	store       AccountStore
	hasher      credential.Hasher
	tokens      TokenIssuer
	diagnostics bool // 500 响应中是否回显内部错误
}

func NewAccountHandler(store AccountStore, hasher credential.Hasher, tokens TokenIssuer, diagnostics bool) *AccountHandler {
	return &AccountHandler{
		store:       store,
		hasher:      hasher,
		tokens:      tokens,
		diagnostics: diagnostics,
	}
}

var errBadBody = apperrors.Validation("Invalid request body")

// bindBody 绑定请求体。form 标签同样会匹配查询参数，密码出现在 URL 中时直接拒绝，避免进入访问日志
func bindBody(c *app.RequestContext, req interface{}) error {
	if c.QueryArgs().Has("password") {
		return apperrors.ErrQueryCredential
	}
	if err := c.BindAndValidate(req); err != nil {
		return errBadBody
	}
	return nil
}

// Register 注册
func (h *AccountHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req model.SignupReq
	if err := bindBody(c, &req); err != nil {
		h.respondError(ctx, c, err)
		return
	}

	if req.Email == "" || req.Username == "" || req.Password == "" || req.Field == "" {
		h.respondError(ctx, c, apperrors.ErrMissingFields)
		return
	}

	if utf8.RuneCountInString(req.Password) < service.MinPasswordLen {
		h.respondError(ctx, c, apperrors.ErrShortPassword)
		return
	}

	acc, err := h.store.Insert(ctx, core.Draft{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Field:    req.Field,
	})
	if err != nil {
		h.respondError(ctx, c, err)
		return
	}

	hlog.CtxInfof(ctx, "account registered id=%s username=%s", acc.ID, acc.Username)
	c.JSON(http.StatusCreated, model.AccountEnvelope{
		Success: true,
		Message: "Account created successfully! Redirecting to signin...",
		User:    model.NewAccountRes(acc),
	})
}

// Authenticate 登录，用户不存在与密码错误返回相同响应
func (h *AccountHandler) Authenticate(ctx context.Context, c *app.RequestContext) {
	var req model.SigninReq
	if err := bindBody(c, &req); err != nil {
		h.respondError(ctx, c, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		h.respondError(ctx, c, apperrors.ErrMissingCredential)
		return
	}

	acc, err := h.store.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			err = apperrors.ErrInvalidCredentials
		}
		h.respondError(ctx, c, err)
		return
	}

	if !h.hasher.Verify(req.Password, acc.PasswordHash) {
		h.respondError(ctx, c, apperrors.ErrInvalidCredentials)
		return
	}

	signed, err := h.tokens.Issue(acc.ID, acc.Email, acc.Username)
	if err != nil {
		h.respondError(ctx, c, apperrors.StoreFault(err))
		return
	}

	c.JSON(http.StatusOK, model.SigninRes{
		Success: true,
		Message: "Signin successful!",
		Token:   signed,
		User:    model.NewAccountRes(acc),
	})
}

// VerifyIdentity 校验令牌并返回当前用户
func (h *AccountHandler) VerifyIdentity(ctx context.Context, c *app.RequestContext) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(ctx, c, apperrors.ErrMissingToken)
		return
	}

	acc, err := h.store.FindByID(ctx, identity.AccountID)
	if err != nil {
		h.respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, model.AccountEnvelope{
		Success: true,
		Message: "Token is valid",
		User:    model.NewAccountRes(acc),
	})
}

// Logout 无状态登出，由客户端丢弃令牌
func (h *AccountHandler) Logout(ctx context.Context, c *app.RequestContext) {
	c.JSON(http.StatusOK, model.MessageRes{Success: true, Message: "Logged out successfully"})
}

// ListAccounts 列出全部账户（仅在调试开关打开时注册路由）
func (h *AccountHandler) ListAccounts(ctx context.Context, c *app.RequestContext) {
	accs, err := h.store.ListAll(ctx)
	if err != nil {
		h.respondError(ctx, c, err)
		return
	}

	users := make([]model.AccountDetailRes, 0, len(accs))
	for _, a := range accs {
		users = append(users, model.NewAccountDetailRes(a))
	}

	c.JSON(http.StatusOK, model.ListRes{Success: true, Count: len(users), Users: users})
}

// NotFound 未匹配路由的兜底处理
func NotFound(ctx context.Context, c *app.RequestContext) {
	c.JSON(http.StatusNotFound, model.ErrorRes{Message: apperrors.ErrRouteNotFound.Message})
}

// 统一错误响应方法
func (h *AccountHandler) respondError(ctx context.Context, c *app.RequestContext, err error) {
	res := model.ErrorRes{Message: apperrors.PublicMessage(err)}
	if apperrors.IsStoreFault(err) {
		_ = c.Error(err)
		if h.diagnostics {
			res.Error = err.Error()
		}
	}
	c.JSON(apperrors.StatusCode(err), res)
}
