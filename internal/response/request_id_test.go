package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func serveWithRequestID(t *testing.T, inbound string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDHonorsValidInbound(t *testing.T) {
	inbound := "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	w := serveWithRequestID(t, inbound)
	if got := w.Header().Get("X-Request-ID"); got != inbound {
		t.Errorf("X-Request-ID = %q, want %q", got, inbound)
	}
}

func TestRequestIDReplacesInvalidInbound(t *testing.T) {
	for _, inbound := range []string{"", "not-a-uuid", "<script>alert(1)</script>"} {
		w := serveWithRequestID(t, inbound)
		got := w.Header().Get("X-Request-ID")
		if got == inbound {
			t.Errorf("inbound %q was echoed back", inbound)
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("inbound %q: response ID %q is not a UUID", inbound, got)
		}
	}
}
