// Package token 登录令牌的签发与校验，服务端不保存任何令牌状态
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL 令牌有效期
const TTL = 7 * 24 * time.Hour

// ErrVerificationFailed Verify 唯一返回的错误，过期、伪造与格式错误不作区分
var ErrVerificationFailed = errors.New("token verification failed")

type Claims struct {
	AccountID string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// Identity 校验通过后的身份信息
type Identity struct {
	AccountID string
	Email     string
	Username  string
}

type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	now    func() time.Time
}

type Option func(*Issuer)

// WithSigningMethod 仅支持 HMAC 系列算法，未知名称忽略
func WithSigningMethod(name string) Option {
	return func(i *Issuer) {
		if m, ok := jwt.GetSigningMethod(name).(*jwt.SigningMethodHMAC); ok {
			i.method = m
		}
	}
}

// WithIssuer 签发方，设置后校验时强制要求
func WithIssuer(iss string) Option {
	return func(i *Issuer) { i.issuer = iss }
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret []byte, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret must not be empty")
	}
	i := &Issuer{
		secret: append([]byte(nil), secret...),
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue 签发令牌
func (i *Issuer) Issue(accountID, email, username string) (string, error) {
	now := i.now()
	claims := Claims{
		AccountID: accountID,
		Email:     email,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify 校验签名、算法、过期时间与签发方
func (i *Issuer) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
		// 拒绝末位字符带非零填充位的签名，否则改动最后一个字符仍可通过校验
		jwt.WithStrictDecoding(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !tok.Valid || claims.AccountID == "" {
		return Identity{}, ErrVerificationFailed
	}

	return Identity{
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Username:  claims.Username,
	}, nil
}
