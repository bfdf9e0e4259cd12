// Package errors 账户服务的错误分类。Kind 决定 HTTP 状态码，Message 可直接返回给调用方
package errors

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindVerification
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindVerification:
		return "verification"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error 分类后的错误，Err 为内部原因，仅开发环境下回显
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按 Kind 与 Message 匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// StoreFault 包装存储层或驱动错误
func StoreFault(err error) *Error {
	return &Error{Kind: KindStore, Message: MsgServerError, Err: err}
}

const (
	MsgServerError   = "Server error. Please try again later."
	MsgMissingFields = "All fields are required"
	MsgShortPassword = "Password must be at least 6 characters"
)

var (
	ErrMissingFields     = Validation(MsgMissingFields)
	ErrShortPassword     = Validation(MsgShortPassword)
	ErrLongPassword      = Validation("Password must be at most 72 bytes")
	ErrInvalidEmail      = Validation("Please provide a valid email")
	ErrInvalidUsername   = Validation("Username must be between 3 and 30 characters")
	ErrInvalidField      = Validation("Field is not one of the supported values")
	ErrMissingCredential = Validation("Username and password are required")
	ErrQueryCredential   = Validation("Password must be sent in the request body")
	ErrDuplicateEmail    = Validation("Email already registered")
	ErrDuplicateUsername = Validation("Username already taken")
	ErrDuplicateAccount  = Validation("Email or username already taken")

	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Message: "Invalid credentials"}

	ErrMissingToken = &Error{Kind: KindVerification, Message: "No token provided"}
	ErrInvalidToken = &Error{Kind: KindVerification, Message: "Invalid or expired token"}

	ErrAccountNotFound = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrRouteNotFound   = &Error{Kind: KindNotFound, Message: "Route not found"}
)

// KindOf 未分类的错误一律视为 KindStore
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}
