// internal/middleware/logging_test.go
package middleware

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExtractResourceType(t *testing.T) {
	cases := map[string]string{
		"/api/v1/orders":                "orders",
		"/api/v1/orders/123/status":     "orders",
		"/api/v1/quotes/123/accept":     "quotes",
		"/api/v1/admin/pricing-factors": "admin",
		"/api/v1/auth/login":            "auth",
		"/v1/orders":                    "orders",
		"/health":                       "health",
		"/":                             "unknown",
	}

	for path, want := range cases {
		assert.Equal(t, want, extractResourceType(path), "%s", path)
	}
}

func TestExtractResourceID(t *testing.T) {
	id := uuid.New().String()
	assert.Equal(t, id, extractResourceID("/api/v1/orders/"+id+"/status"))
	assert.Equal(t, "", extractResourceID("/api/v1/orders"))
}
