package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"serverless-todo/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

var testAuthConfig = middleware.AuthConfig{Secret: testSecret, Issuer: "serverless-todo"}

func createTestToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-123",
		"email": "user@example.com",
		"iss":   "serverless-todo",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.AuthMiddleware(testAuthConfig))
	router.GET("/protected", func(c *gin.Context) {
		claims, _ := c.Get(middleware.ClaimsKey)
		c.JSON(http.StatusOK, claims)
	})
	return router
}

func serve(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := setupAuthRouter()
	w := serve(router, "Bearer "+createTestToken(t, jwt.SigningMethodHS256, validClaims()))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &claims); err != nil {
		t.Fatalf("failed to decode claims: %v", err)
	}
	if claims["sub"] != "user-123" {
		t.Errorf("Expected sub user-123, got %v", claims["sub"])
	}
	if claims["email"] != "user@example.com" {
		t.Errorf("Expected email user@example.com, got %v", claims["email"])
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "someone-else"

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "no token", header: "", code: "missing_token"},
		{name: "not bearer", header: "Basic abc", code: "invalid_token_format"},
		{name: "garbage", header: "Bearer invalid_token", code: "invalid_token"},
		{name: "expired", header: "Bearer " + createTestToken(t, jwt.SigningMethodHS256, expired), code: "expired_token"},
		{name: "wrong issuer", header: "Bearer " + createTestToken(t, jwt.SigningMethodHS256, wrongIssuer), code: "invalid_issuer"},
		{name: "wrong algorithm", header: "Bearer " + createTestToken(t, jwt.SigningMethodHS512, validClaims()), code: "invalid_token"},
	}

	router := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if got := errorCode(t, w); got != tt.code {
				t.Errorf("Expected error %s, got %s", tt.code, got)
			}
		})
	}
}

func TestAuthMiddleware_MissingSubjectPassesThrough(t *testing.T) {
	claims := validClaims()
	delete(claims, "sub")

	w := serve(setupAuthRouter(), "Bearer "+createTestToken(t, jwt.SigningMethodHS256, claims))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}
