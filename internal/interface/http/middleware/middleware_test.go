package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-backoffice/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTracing_SpanPerRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := gin.New()
	r.Use(Tracing(tp))
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /orders/:id", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestLogger_GeneratesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	got := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, got)
	assert.Equal(t, got, seen)
}

func TestRequireAuth(t *testing.T) {
	manager := jwt.NewManager("secret", "bookstore-backoffice", time.Hour)
	userID := uuid.New()
	token, err := manager.Issue(userID, "a@b.c")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(manager).RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c).String())
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"缺少Token", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"签名错误", "Bearer " + token + "x", http.StatusUnauthorized},
		{"正常", "Bearer " + token, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, c.status, w.Code)
			if c.status == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}
