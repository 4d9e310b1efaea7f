package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swaggerRouter(cfg SwaggerConfig, gate gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, gate, nil), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func getSwagger(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	w := getSwagger(swaggerRouter(SwaggerConfig{Enabled: false}, nil), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, dto.ErrCodeNotFound, body["errors"].(map[string]any)["code"])
}

func TestSwaggerProtection_EnabledWithoutRestrictions(t *testing.T) {
	w := getSwagger(swaggerRouter(SwaggerConfig{Enabled: true}, nil), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs", w.Body.String())
}

func TestSwaggerProtection_Allowlist(t *testing.T) {
	cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1", "10.20.0.0/16", "not-an-ip"}}
	router := swaggerRouter(cfg, nil)

	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:12345", http.StatusOK},
		{"10.20.7.9:443", http.StatusOK},
		{"[::ffff:10.20.1.1]:443", http.StatusOK},
		{"10.21.0.1:443", http.StatusForbidden},
		{"192.168.1.100:12345", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			assert.Equal(t, tt.want, getSwagger(router, tt.remote).Code)
		})
	}
}

func TestSwaggerProtection_OnlyInvalidEntriesDeniesEveryone(t *testing.T) {
	router := swaggerRouter(SwaggerConfig{Enabled: true, AllowedIPs: []string{"nope"}}, nil)

	assert.Equal(t, http.StatusForbidden, getSwagger(router, "127.0.0.1:1").Code)
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	var gateCalls int
	gate := func(c *gin.Context) {
		gateCalls++
		if c.GetHeader("Authorization") != "Bearer ok" {
			dto.Unauthorized(c, "Authorization required", dto.ErrorInfo{Code: dto.ErrCodeUnauthorized})
		}
	}
	router := swaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, gate)

	w := getSwagger(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.Header.Set("Authorization", "Bearer ok")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gateCalls)
}

func TestSwaggerProtection_AllowlistCheckedBeforeAuth(t *testing.T) {
	var gateCalls int
	gate := func(c *gin.Context) { gateCalls++ }
	cfg := SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.0/8"}}

	w := getSwagger(swaggerRouter(cfg, gate), "192.168.1.1:1")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, gateCalls)
}
