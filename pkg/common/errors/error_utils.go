package errors

import (
	"errors"
	"net/http"
)

// StatusCode 错误到 HTTP 状态码的映射
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication, KindVerification:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 可对外展示的错误信息，未分类错误统一为通用提示
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return MsgServerError
}

func IsStoreFault(err error) bool {
	return err != nil && KindOf(err) == KindStore
}
