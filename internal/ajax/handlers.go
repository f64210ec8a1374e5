package ajax

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/internal/metrics"
	"github.com/jonesrussell/autoload-next-post/internal/options"
	"github.com/jonesrussell/autoload-next-post/internal/selectors"
)

// Response sentinels.
const (
	rejected = -1
	accepted = 1
)

const defaultPostType = "post"

// blank matches the plugin's notion of an empty request value: "" and "0".
func blank(s string) bool {
	return s == "" || s == "0"
}

// TemplateLocator scans for and looks up a post type's template directory.
type TemplateLocator interface {
	Scan(ctx context.Context, postType string) (dir string, found bool, err error)
	Directory(ctx context.Context, postType string) (*string, error)
}

// SettingNotifier is told about every written setting.
type SettingNotifier interface {
	SettingUpdated(option, value string)
}

// Handlers implements the actions.
type Handlers struct {
	store    options.Store
	locator  TemplateLocator
	notifier SettingNotifier
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewHandlers wires the actions. notifier and m may be nil.
func NewHandlers(
	store options.Store,
	locator TemplateLocator,
	notifier SettingNotifier,
	m *metrics.Metrics,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		store:    store,
		locator:  locator,
		notifier: notifier,
		metrics:  m,
		logger:   log,
	}
}

// FindTemplateLocation scans the theme for post_type and answers with the
// recorded directory. A post_type of "" or "0" answers -1 without scanning. A missing record answers null; a recorded "" or "0"
// answers -1.
func (h *Handlers) FindTemplateLocation(c *gin.Context) string {
	postType, present := c.GetQuery("post_type")
	if !present {
		postType = defaultPostType
	}
	if blank(postType) {
		c.JSON(http.StatusOK, rejected)
		return metrics.OutcomeRejected
	}

	ctx := c.Request.Context()

	_, found, err := h.locator.Scan(ctx, postType)
	if err != nil {
		return h.fail(c, fmt.Errorf("scan directories for %s: %w", postType, err), "template scan failed")
	}
	h.metrics.RecordTemplateScan(found)

	directory, err := h.locator.Directory(ctx, postType)
	if err != nil {
		return h.fail(c, fmt.Errorf("template directory for %s: %w", postType, err), "template lookup failed")
	}

	switch {
	case directory == nil:
		c.JSON(http.StatusOK, nil)
	case !blank(*directory):
		c.JSON(http.StatusOK, *directory)
	default:
		c.JSON(http.StatusOK, rejected)
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeOK
}

// Selectors answers the selector list for category.
func (h *Handlers) Selectors(c *gin.Context, category selectors.Category) string {
	c.JSON(http.StatusOK, selectors.For(category))
	return metrics.OutcomeOK
}

// SetSetting writes auto_load_next_post_<setting> = value. It only rejects
// when both fields are blank ("" or "0"), so a named setting with an empty
// value is still written.
func (h *Handlers) SetSetting(c *gin.Context) string {
	setting := c.PostForm("setting")
	value := c.PostForm("value")

	if blank(setting) && blank(value) {
		c.JSON(http.StatusOK, rejected)
		return metrics.OutcomeRejected
	}

	name := options.SettingName(setting)
	if err := h.store.Set(c.Request.Context(), name, value); err != nil {
		return h.fail(c, fmt.Errorf("set setting %s: %w", name, err), "failed to save setting")
	}

	h.logger.Debug("Setting saved", logger.String("option", name))
	h.metrics.RecordSettingWritten()
	if h.notifier != nil {
		h.notifier.SettingUpdated(name, value)
	}

	c.JSON(http.StatusOK, accepted)
	return metrics.OutcomeOK
}

// fail attaches err for the request logger and answers 500.
func (h *Handlers) fail(c *gin.Context, err error, message string) string {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	return metrics.OutcomeError
}
