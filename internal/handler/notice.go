package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	infralogger "github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/internal/metrics"
	"github.com/jonesrussell/autoload-next-post/internal/notice"
)

// NoticeHandler serves the version-requirement notice for the admin screen.
type NoticeHandler struct {
	pluginName      string
	requiredVersion string
	platformVersion string
	metrics         *metrics.Metrics
	logger          infralogger.Logger
}

// NewNoticeHandler creates a NoticeHandler. platformVersion is the version
// reported by the host when the request does not carry one.
func NewNoticeHandler(
	pluginName, requiredVersion, platformVersion string,
	m *metrics.Metrics,
	log infralogger.Logger,
) *NoticeHandler {
	return &NoticeHandler{
		pluginName:      pluginName,
		requiredVersion: requiredVersion,
		platformVersion: platformVersion,
		metrics:         m,
		logger:          log,
	}
}

// HandleNotice answers the HTML fragment when the platform is too old and
// 204 otherwise. The "wp_version" query parameter overrides the configured
// platform version.
func (h *NoticeHandler) HandleNotice(c *gin.Context) {
	current := c.DefaultQuery("wp_version", h.platformVersion)

	if !notice.Required(current, h.requiredVersion) {
		c.Status(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := notice.Render(&buf, h.pluginName, h.requiredVersion); err != nil {
		h.logger.Error("Failed to render notice", infralogger.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	h.metrics.RecordNotice()
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
