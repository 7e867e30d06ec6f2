package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"tailor-portal/internal/shared/telemetry"
)

func TestRecoveryHidesPanicDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	prev := telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(prev) })

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("open /srv/portal/public/downloads/x.pdf: permission denied")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "/srv/portal") {
		t.Fatalf("response leaked internal path: %s", resp.Body.String())
	}
	if !strings.Contains(buf.String(), "/srv/portal") {
		t.Fatalf("expected panic detail in server log")
	}
}
