package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tailor-portal/internal/shared/auth"
	"tailor-portal/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, err := auth.Sign("secret", "user_7", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	router := gin.New()
	router.Use(RequestID(), Auth(auth.NewVerifier("secret")), Logging())
	router.POST("/api/tailor-resume", func(c *gin.Context) {
		c.Set(ResumeIDKey, "42")
		c.Set(JobIDKey, "7")
		c.Set(FileIDKey, "Tailored_Resume_Acme.pdf")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var buf bytes.Buffer
	prev := telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(prev) })

	req := httptest.NewRequest(http.MethodPost, "/api/tailor-resume", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "user_id", "duration_ms", "status", ResumeIDKey, JobIDKey, FileIDKey}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["user_id"] != "user_7" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload[FileIDKey] != "Tailored_Resume_Acme.pdf" {
		t.Fatalf("unexpected fileId: %v", payload[FileIDKey])
	}
}
