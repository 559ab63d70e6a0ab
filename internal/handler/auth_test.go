package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain"
	"staybook/internal/middleware"
)

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_SetsHTTPOnlyTokenCookie(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.login = func(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
		assert.Equal(t, "ana@example.com", creds.Email)
		return domain.AuthResult{
			Token: "opaque-token",
			User:  domain.User{ID: 42, Name: "Ana", Email: creds.Email},
		}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/login",
		jsonBody(t, domain.Credentials{Email: "ana@example.com", Password: "secret"}))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, middleware.TokenCookie)
	require.NotNil(t, cookie, "expected the token cookie")
	assert.Equal(t, "opaque-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int((7 * 24 * 60 * 60)), cookie.MaxAge)

	// The token never appears in the response body.
	assert.NotContains(t, rec.Body.String(), "opaque-token")

	var body struct {
		User domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 42, body.User.ID)
}

func TestLogin_ValidationErrorBecomes422(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.login = func(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Login: %w: email and password are required", domain.ErrValidation)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", jsonBody(t, domain.Credentials{}))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "email and password are required", body.Error.Message)
}

func TestLogin_FieldErrorsIncludeFieldMap(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.login = func(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
		return domain.AuthResult{}, domain.FieldErrors{"email": {"The email field is required."}}
	}

	req := httptest.NewRequest(http.MethodPost, "/login", jsonBody(t, domain.Credentials{Password: "x"}))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error struct {
			Code   string              `json:"code"`
			Fields map[string][]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, []string{"The email field is required."}, body.Error.Fields["email"])
}

func TestRegister_ForwardsRoleAndReturns201(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.register = func(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
		assert.Equal(t, "host", reg.Role)
		assert.Equal(t, "Ana", reg.Name)
		return domain.AuthResult{Token: "t", User: domain.User{ID: 1, Name: reg.Name}}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/register", jsonBody(t, map[string]string{
		"name":                  "Ana",
		"email":                 "ana@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
		"role":                  "host",
	}))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, findCookie(t, rec, middleware.TokenCookie))
}

func TestLogout_ClearsTokenCookie(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(tokenCookie("opaque-token"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	cookie := findCookie(t, rec, middleware.TokenCookie)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestLogin_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
