package model

import (
	"time"

	core "account-service/pkg/core/account/model"
)

// 请求数据结构（支持 JSON 与表单提交）
type (
	SignupReq struct {
		Email    string `json:"email" form:"email"`
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
		Field    string `json:"field" form:"field"`
	}

	SigninReq struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
)

// 响应数据结构，统一携带 success 字段
type (
	AccountRes struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Field    string `json:"field"`
	}

	AccountDetailRes struct {
		AccountRes
		CreatedAt time.Time `json:"createdAt"`
	}

	MessageRes struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	AccountEnvelope struct {
		Success bool       `json:"success"`
		Message string     `json:"message"`
		User    AccountRes `json:"user"`
	}

	SigninRes struct {
		Success bool       `json:"success"`
		Message string     `json:"message"`
		Token   string     `json:"token"`
		User    AccountRes `json:"user"`
	}

	ListRes struct {
		Success bool               `json:"success"`
		Count   int                `json:"count"`
		Users   []AccountDetailRes `json:"users"`
	}

	HealthRes struct {
		Success   bool      `json:"success"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
		Uptime    string    `json:"uptime"`
	}

	// ErrorRes 失败响应，Error 仅在开发环境返回
	ErrorRes struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error,omitempty"`
	}
)

func NewAccountRes(a core.Account) AccountRes {
	return AccountRes{
		ID:       a.ID,
		Email:    a.Email,
		Username: a.Username,
		Field:    a.Field,
	}
}

func NewAccountDetailRes(a core.Account) AccountDetailRes {
	return AccountDetailRes{AccountRes: NewAccountRes(a), CreatedAt: a.CreatedAt}
}
