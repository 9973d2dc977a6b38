package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yungbote/leadflow-backend/internal/platform/logger"
)

func newAuthRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	wa := NewWebhookAuth(log, token)
	r := gin.New()
	r.Use(wa.RequireToken())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRequireToken(t *testing.T) {
	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid_token", authHeader: "Bearer secret-token", wantStatus: http.StatusOK},
		{name: "wrong_token", authHeader: "Bearer wrong", wantStatus: http.StatusUnauthorized},
		{name: "missing_header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "no_bearer_prefix", authHeader: "secret-token", wantStatus: http.StatusUnauthorized},
		{name: "lowercase_bearer", authHeader: "bearer secret-token", wantStatus: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthRouter("secret-token")
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}
