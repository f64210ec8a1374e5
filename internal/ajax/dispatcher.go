package ajax

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/autoload-next-post/infrastructure/jwt"
	"github.com/jonesrussell/autoload-next-post/internal/metrics"
)

// Path is the admin-ajax endpoint.
const Path = "/wp-admin/admin-ajax.php"

// Caller contexts, set on the gin context as "ajax_context".
const (
	ContextPriv   = "priv"
	ContextNoPriv = "nopriv"
)

// Dispatcher resolves the action parameter against the registry.
type Dispatcher struct {
	registry *Registry
	handlers *Handlers
	metrics  *metrics.Metrics
}

func NewDispatcher(registry *Registry, handlers *Handlers, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{registry: registry, handlers: handlers, metrics: m}
}

// Register mounts the dispatcher on GET and POST Path.
func (d *Dispatcher) Register(router gin.IRoutes) {
	router.GET(Path, d.Serve)
	router.POST(Path, d.Serve)
}

// Serve handles one admin-ajax request. Callers with a valid token are
// dispatched through the logged-in hooks, others through the nopriv hooks.
// Unknown actions get "0" with status 400.
func (d *Dispatcher) Serve(c *gin.Context) {
	action := c.Query("action")
	if action == "" {
		action = c.PostForm("action")
	}

	callerContext, prefix := ContextNoPriv, NoPrivHookPrefix
	if jwt.Authenticated(c) {
		callerContext, prefix = ContextPriv, HookPrefix
	}
	c.Set("ajax_context", callerContext)

	route, ok := d.registry.Lookup(prefix + action)
	if action == "" || !ok {
		d.metrics.RecordAjax("unknown", callerContext, metrics.OutcomeUnknown)
		c.String(http.StatusBadRequest, "0")
		return
	}

	c.Set("ajax_action", strings.TrimPrefix(action, ActionPrefix))
	outcome := route.Handle(d.handlers, c)
	d.metrics.RecordAjax(route.Action, callerContext, outcome)
}
