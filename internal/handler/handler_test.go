package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	infralogger "github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/internal/handler"
	"github.com/jonesrussell/autoload-next-post/internal/notice"
	"github.com/stretchr/testify/assert"
)

func setupNoticeRouter(t *testing.T, platformVersion string) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewNoticeHandler(notice.DefaultPluginName, "6.0", platformVersion, nil, infralogger.NewNop())
	r.GET("/wp-admin/notices", h.HandleNotice)
	return r
}

func TestHandleNotice_PlatformTooOld(t *testing.T) {
	t.Parallel()

	r := setupNoticeRouter(t, "5.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-admin/notices", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "requires WordPress 6.0 or higher")
}

func TestHandleNotice_PlatformSupported(t *testing.T) {
	t.Parallel()

	r := setupNoticeRouter(t, "6.4.2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-admin/notices", http.NoBody))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleNotice_QueryOverridesVersion(t *testing.T) {
	t.Parallel()

	r := setupNoticeRouter(t, "6.4.2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-admin/notices?wp_version=5.2", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleDetect(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/selectors/detect", handler.NewDetectHandler(infralogger.NewNop()).HandleDetect)

	page := `<main id="main"><h1 class="post-title">Hi</h1><div id="comments"></div></main>`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/selectors/detect", strings.NewReader(page))
	req.Header.Set("Content-Type", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"selectors": {
			"container": "main#main",
			"title": "h1.post-title",
			"comments": "div#comments"
		},
		"missing": ["post_navigation"]
	}`, w.Body.String())
}
