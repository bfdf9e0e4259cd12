package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	apperrors "account-service/pkg/common/errors"
	core "account-service/pkg/core/account/model"
	"account-service/pkg/core/credential"
	"account-service/pkg/core/token"
	"account-service/pkg/web/middleware"
	"account-service/pkg/web/model"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errDriver = errors.New("dial tcp 10.0.0.7:27017: connection refused")

// brokenStore 所有调用都返回存储错误
type brokenStore struct{}

func (brokenStore) Insert(context.Context, core.Draft) (core.Account, error) {
	return core.Account{}, apperrors.StoreFault(errDriver)
}

func (brokenStore) FindByUsername(context.Context, string) (core.Account, error) {
	return core.Account{}, apperrors.StoreFault(errDriver)
}

func (brokenStore) FindByID(context.Context, string) (core.Account, error) {
	return core.Account{}, apperrors.StoreFault(errDriver)
}

func (brokenStore) ListAll(context.Context) ([]core.Account, error) {
	return nil, apperrors.StoreFault(errDriver)
}

// fixedStore 只包含一个账户
type fixedStore struct {
	brokenStore
	acc core.Account
}

func (s fixedStore) FindByUsername(_ context.Context, username string) (core.Account, error) {
	if username != s.acc.Username {
		return core.Account{}, apperrors.ErrAccountNotFound
	}
	return s.acc, nil
}

type failingIssuer struct{}

func (failingIssuer) Issue(string, string, string) (string, error) {
	return "", errors.New("signer unavailable")
}

func newHandlerServer(h *AccountHandler, tokens middleware.TokenVerifier) *server.Hertz {
	srv := server.New()
	srv.POST("/signup", h.Register)
	srv.POST("/signin", h.Authenticate)
	srv.GET("/users", h.ListAccounts)
	srv.GET("/verify-token", middleware.BearerAuthMiddleware(tokens), h.VerifyIdentity)
	srv.GET("/verify-unguarded", h.VerifyIdentity)
	return srv
}

func perform(srv *server.Hertz, method, path, body string, headers ...ut.Header) (int, model.ErrorRes) {
	var reqBody *ut.Body
	if body != "" {
		reqBody = &ut.Body{Body: bytes.NewBufferString(body), Len: len(body)}
		headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	}
	resp := ut.PerformRequest(srv.Engine, method, path, reqBody, headers...).Result()

	var res model.ErrorRes
	_ = json.Unmarshal(resp.Body(), &res)
	return resp.StatusCode(), res
}

const signupBody = `{"email":"a@x.com","username":"alice","password":"secret1","field":"Other"}`

func TestStoreFaultDiagnostics(t *testing.T) {
	hasher := credential.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := token.NewIssuer([]byte("k"))
	require.NoError(t, err)

	t.Run("production hides cause", func(t *testing.T) {
		srv := newHandlerServer(NewAccountHandler(brokenStore{}, hasher, tokens, false), tokens)

		status, res := perform(srv, "POST", "/signup", signupBody)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, apperrors.MsgServerError, res.Message)
		assert.Empty(t, res.Error)

		status, res = perform(srv, "GET", "/users", "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Empty(t, res.Error)
	})

	t.Run("development echoes cause", func(t *testing.T) {
		srv := newHandlerServer(NewAccountHandler(brokenStore{}, hasher, tokens, true), tokens)

		status, res := perform(srv, "POST", "/signup", signupBody)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Contains(t, res.Error, "connection refused")
	})

	t.Run("signin store fault", func(t *testing.T) {
		srv := newHandlerServer(NewAccountHandler(brokenStore{}, hasher, tokens, false), tokens)

		status, _ := perform(srv, "POST", "/signin", `{"username":"alice","password":"secret1"}`)
		assert.Equal(t, http.StatusInternalServerError, status)
	})

	t.Run("verify store fault", func(t *testing.T) {
		srv := newHandlerServer(NewAccountHandler(brokenStore{}, hasher, tokens, false), tokens)
		tok, err := tokens.Issue("acc-1", "a@x.com", "alice")
		require.NoError(t, err)

		status, _ := perform(srv, "GET", "/verify-token", "", ut.Header{Key: "Authorization", Value: "Bearer " + tok})
		assert.Equal(t, http.StatusInternalServerError, status)
	})
}

func TestAuthenticate_IssuerFailure(t *testing.T) {
	hasher := credential.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)

	store := fixedStore{acc: core.Account{ID: "acc-1", Email: "a@x.com", Username: "alice", PasswordHash: hash}}
	tokens, err := token.NewIssuer([]byte("k"))
	require.NoError(t, err)
	srv := newHandlerServer(NewAccountHandler(store, hasher, failingIssuer{}, false), tokens)

	status, res := perform(srv, "POST", "/signin", `{"username":"alice","password":"secret1"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperrors.MsgServerError, res.Message)

	status, _ = perform(srv, "POST", "/signin", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestVerifyIdentity_WithoutMiddleware(t *testing.T) {
	tokens, err := token.NewIssuer([]byte("k"))
	require.NoError(t, err)
	srv := newHandlerServer(NewAccountHandler(brokenStore{}, credential.NewBcryptHasher(bcrypt.MinCost), tokens, false), tokens)

	status, res := perform(srv, "GET", "/verify-unguarded", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", res.Message)
}

func TestNotFound(t *testing.T) {
	srv := server.New()
	srv.NoRoute(NotFound)

	status, res := perform(srv, "GET", "/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", res.Message)
	assert.False(t, res.Success)
}

var _ app.HandlerFunc = NotFound
