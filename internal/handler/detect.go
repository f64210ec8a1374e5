// Package handler holds the HTTP handlers outside the admin-ajax surface.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	infralogger "github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/internal/selectors"
)

// maxDetectBody caps the page size accepted for detection.
const maxDetectBody = 5 << 20

// DetectResponse lists the first matching selector per category.
type DetectResponse struct {
	Selectors map[selectors.Category]string `json:"selectors"`
	Missing   []selectors.Category          `json:"missing"`
}

// DetectHandler runs selector detection on a posted theme page.
type DetectHandler struct {
	logger infralogger.Logger
}

func NewDetectHandler(log infralogger.Logger) *DetectHandler {
	return &DetectHandler{logger: log}
}

// HandleDetect reads the raw HTML body and reports which table selectors it
// matches.
func (h *DetectHandler) HandleDetect(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxDetectBody)

	found, err := selectors.Detect(body)
	if err != nil {
		h.logger.Warn("Selector detection failed", infralogger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse document"})
		return
	}

	missing := make([]selectors.Category, 0)
	for _, category := range selectors.Categories() {
		if _, ok := found[category]; !ok {
			missing = append(missing, category)
		}
	}

	c.JSON(http.StatusOK, DetectResponse{Selectors: found, Missing: missing})
}
