package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

func TestAbortWithAuthError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrAuthRequired, http.StatusUnauthorized, "AUTH_REQUIRED"},
		{ErrTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
		{fmt.Errorf("%w: exp", ErrTokenExpired), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{fmt.Errorf("%w: sig", ErrInvalidToken), http.StatusUnauthorized, "INVALID_TOKEN"},
		{ErrAccountNotFound, http.StatusUnauthorized, "ACCOUNT_NOT_FOUND"},
		{ErrAccountDisabled, http.StatusUnauthorized, "ACCOUNT_DELETED"},
		{errors.New("db down"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		AbortWithAuthError(c, tc.err)

		if !c.IsAborted() {
			t.Errorf("%v: context not aborted", tc.err)
		}
		if w.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: decode body: %v", tc.err, err)
		}
		if body["code"] != tc.code {
			t.Errorf("%v: code = %q, want %q", tc.err, body["code"], tc.code)
		}
		if body["error"] == "" || body["message"] == "" {
			t.Errorf("%v: body missing error/message: %v", tc.err, body)
		}
	}
}

func TestStreamToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/stream?token=query-token", nil)
	if got := StreamToken(c); got != "query-token" {
		t.Fatalf("StreamToken = %q", got)
	}
	if got := BearerToken(c); got != "" {
		t.Fatalf("BearerToken without header = %q", got)
	}

	c.Request.Header.Set("Authorization", "Bearer header-token")
	if got := StreamToken(c); got != "header-token" {
		t.Fatalf("StreamToken prefers header, got %q", got)
	}

	c.Request.Header.Set("Authorization", "Basic xyz")
	if got := BearerToken(c); got != "" {
		t.Fatalf("BearerToken with Basic scheme = %q", got)
	}
}
