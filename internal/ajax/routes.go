// Package ajax serves the plugin's admin-ajax actions.
package ajax

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/autoload-next-post/internal/selectors"
)

// Hook name prefixes, as used by admin-ajax.php.
const (
	HookPrefix       = "wp_ajax_"
	NoPrivHookPrefix = "wp_ajax_nopriv_"
	ActionPrefix     = "alnp_"
)

// Handler answers one action and returns the metrics outcome.
type Handler func(h *Handlers, c *gin.Context) string

// Route binds an action to its handler. NoPriv routes are also reachable by
// anonymous callers.
type Route struct {
	Action string
	NoPriv bool
	Handle Handler
}

// Routes is the action table in declaration order.
func Routes() []Route {
	return []Route{
		{Action: "find_template_location", NoPriv: true, Handle: (*Handlers).FindTemplateLocation},
		{Action: "get_container_selectors", NoPriv: true, Handle: selectorRoute(selectors.Container)},
		{Action: "get_title_selectors", NoPriv: true, Handle: selectorRoute(selectors.Title)},
		{Action: "get_post_navigation_selectors", NoPriv: true, Handle: selectorRoute(selectors.PostNavigation)},
		{Action: "get_comment_selectors", NoPriv: true, Handle: selectorRoute(selectors.Comments)},
		{Action: "set_setting", NoPriv: true, Handle: (*Handlers).SetSetting},
	}
}

func selectorRoute(category selectors.Category) Handler {
	return func(h *Handlers, c *gin.Context) string {
		return h.Selectors(c, category)
	}
}

// HookName returns the hook an action is registered under.
func HookName(action string, noPriv bool) string {
	if noPriv {
		return NoPrivHookPrefix + ActionPrefix + action
	}
	return HookPrefix + ActionPrefix + action
}

// Registry maps hook names to routes.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Route
}

func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Route)}
}

// AddAjaxEvents registers every route under its logged-in hook and, for
// NoPriv routes, its anonymous hook. Calling it again replaces the entries.
func (r *Registry) AddAjaxEvents() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, route := range Routes() {
		r.hooks[HookName(route.Action, false)] = route
		if route.NoPriv {
			r.hooks[HookName(route.Action, true)] = route
		}
	}
}

// Lookup returns the route registered under hook.
func (r *Registry) Lookup(hook string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.hooks[hook]
	return route, ok
}

// Hooks returns the registered hook names, sorted.
func (r *Registry) Hooks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.hooks))
	for hook := range r.hooks {
		out = append(out, hook)
	}
	sort.Strings(out)
	return out
}
