package ajax_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/jonesrussell/autoload-next-post/infrastructure/jwt"
	infralogger "github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/internal/ajax"
	"github.com/jonesrussell/autoload-next-post/internal/metrics"
	"github.com/jonesrussell/autoload-next-post/internal/options"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// fakeLocator records scans and answers Directory from a fixed map.
type fakeLocator struct {
	mu      sync.Mutex
	scanned []string
	records map[string]string
	scanErr error
	dirErr  error
}

func (f *fakeLocator) Scan(_ context.Context, postType string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scanned = append(f.scanned, postType)
	if f.scanErr != nil {
		return "", false, f.scanErr
	}
	dir, ok := f.records[postType]
	return dir, ok, nil
}

func (f *fakeLocator) Directory(_ context.Context, postType string) (*string, error) {
	if f.dirErr != nil {
		return nil, f.dirErr
	}
	dir, ok := f.records[postType]
	if !ok {
		return nil, nil
	}
	return &dir, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	updates []string
}

func (f *fakeNotifier) SettingUpdated(option, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, option+"="+value)
}

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", errors.New("db down") }
func (failingStore) Set(context.Context, string, string) error { return errors.New("db down") }
func (failingStore) List(context.Context, string) (map[string]string, error) {
	return nil, errors.New("db down")
}

type fixture struct {
	router   *gin.Engine
	store    options.Store
	locator  *fakeLocator
	notifier *fakeNotifier
	metrics  *metrics.Metrics
}

func setupRouter(t *testing.T, store options.Store) *fixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	if store == nil {
		store = options.NewMemoryStore()
	}
	f := &fixture{
		store: store,
		locator: &fakeLocator{records: map[string]string{
			"post":    "template-parts/post/",
			"product": "",
			"legacy":  "0",
		}},
		notifier: &fakeNotifier{},
		metrics:  metrics.New(),
	}

	registry := ajax.NewRegistry()
	registry.AddAjaxEvents()

	handlers := ajax.NewHandlers(f.store, f.locator, f.notifier, f.metrics, infralogger.NewNop())
	dispatcher := ajax.NewDispatcher(registry, handlers, f.metrics)

	r := gin.New()
	r.Use(jwt.OptionalMiddleware(testSecret))
	dispatcher.Register(r)
	f.router = r

	return f
}

func counter(f *fixture, action, callerContext, outcome string) float64 {
	return testutil.ToFloat64(f.metrics.AjaxRequests.WithLabelValues(action, callerContext, outcome))
}

func get(t *testing.T, r *gin.Engine, query string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, ajax.Path+"?"+query, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func post(t *testing.T, r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, ajax.Path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	routes := ajax.Routes()
	require.Len(t, routes, 6)

	want := []string{
		"find_template_location",
		"get_container_selectors",
		"get_title_selectors",
		"get_post_navigation_selectors",
		"get_comment_selectors",
		"set_setting",
	}
	for i, route := range routes {
		assert.Equal(t, want[i], route.Action)
		assert.True(t, route.NoPriv, route.Action)
		assert.NotNil(t, route.Handle, route.Action)
	}
}

func TestAddAjaxEvents(t *testing.T) {
	t.Parallel()

	registry := ajax.NewRegistry()
	registry.AddAjaxEvents()
	assert.Len(t, registry.Hooks(), 12)

	registry.AddAjaxEvents()
	hooks := registry.Hooks()
	assert.Len(t, hooks, 12)
	assert.Contains(t, hooks, "wp_ajax_alnp_set_setting")
	assert.Contains(t, hooks, "wp_ajax_nopriv_alnp_set_setting")

	route, ok := registry.Lookup("wp_ajax_nopriv_alnp_get_title_selectors")
	require.True(t, ok)
	assert.Equal(t, "get_title_selectors", route.Action)

	_, ok = registry.Lookup("wp_ajax_alnp_delete_setting")
	assert.False(t, ok)
}

func TestSelectorActions(t *testing.T) {
	t.Parallel()

	f := setupRouter(t, nil)

	tests := []struct {
		action string
		want   string
	}{
		{
			action: "alnp_get_container_selectors",
			want: `["main.site-main","main#main","main.post-wrap","div#main",` +
				`"div.site-content","div#content","div.content-container"]`,
		},
		{
			action: "alnp_get_title_selectors",
			want:   `["h1.entry-title","h1.post-title","h1.page-title","h1.title-single","h1"]`,
		},
		{
			action: "alnp_get_post_navigation_selectors",
			want: `["nav.post-navigation","nav.navigation-post","nav.navigation","div.navigation",` +
				`"nav#nav-below","#nav-single","div.next-prev","nav.prev-next-nav"]`,
		},
		{
			action: "alnp_get_comment_selectors",
			want:   `["div#comments","section#comments"]`,
		},
	}

	for _, tt := range tests {
		first := get(t, f.router, "action="+tt.action)
		second := get(t, f.router, "action="+tt.action)

		assert.Equal(t, http.StatusOK, first.Code, tt.action)
		assert.JSONEq(t, tt.want, first.Body.String(), tt.action)
		assert.Equal(t, first.Body.String(), second.Body.String(), tt.action)
		assert.Contains(t, first.Header().Get("Content-Type"), "application/json")
	}
}

func TestFindTemplateLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		want    string
		scanned bool
	}{
		{name: "default post type", query: "", want: `"template-parts/post/"`, scanned: true},
		{name: "explicit post type", query: "&post_type=post", want: `"template-parts/post/"`, scanned: true},
		{name: "empty post type", query: "&post_type=", want: `-1`, scanned: false},
		{name: "zero post type", query: "&post_type=0", want: `-1`, scanned: false},
		{name: "no record", query: "&post_type=page", want: `null`, scanned: true},
		{name: "empty record", query: "&post_type=product", want: `-1`, scanned: true},
		{name: "zero record", query: "&post_type=legacy", want: `-1`, scanned: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupRouter(t, nil)
			w := get(t, f.router, "action=alnp_find_template_location"+tt.query)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
			assert.Equal(t, tt.scanned, len(f.locator.scanned) == 1)
		})
	}
}

func TestFindTemplateLocation_ScanError(t *testing.T) {
	t.Parallel()

	f := setupRouter(t, nil)
	f.locator.scanErr = errors.New("permission denied")

	w := get(t, f.router, "action=alnp_find_template_location&post_type=post")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"template scan failed"}`, w.Body.String())
}

func TestFindTemplateLocation_LookupError(t *testing.T) {
	t.Parallel()

	f := setupRouter(t, nil)
	f.locator.dirErr = errors.New("db down")

	w := get(t, f.router, "action=alnp_find_template_location&post_type=post")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"template lookup failed"}`, w.Body.String())
}

func TestSetSetting(t *testing.T) {
	t.Parallel()

	f := setupRouter(t, nil)
	ctx := context.Background()

	w := post(t, f.router, url.Values{
		"action":  {"alnp_set_setting"},
		"setting": {"foo"},
		"value":   {"bar"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Body.String())

	got, err := f.store.Get(ctx, "auto_load_next_post_foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", got)
	assert.Equal(t, []string{"auto_load_next_post_foo=bar"}, f.notifier.updates)
}

func TestSetSetting_BothEmptyRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields url.Values
	}{
		{name: "missing", fields: url.Values{}},
		{name: "empty", fields: url.Values{"setting": {""}, "value": {""}}},
		{name: "zero key and value", fields: url.Values{"setting": {"0"}, "value": {"0"}}},
		{name: "empty key zero value", fields: url.Values{"setting": {""}, "value": {"0"}}},
		{name: "zero key empty value", fields: url.Values{"setting": {"0"}, "value": {""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := options.NewMemoryStore()
			f := setupRouter(t, store)

			form := url.Values{"action": {"alnp_set_setting"}}
			for k, v := range tt.fields {
				form[k] = v
			}
			w := post(t, f.router, form)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "-1", w.Body.String())
			assert.Equal(t, 0, store.Len())
			assert.Empty(t, f.notifier.updates)
		})
	}
}

// A named setting with an empty value is written, not rejected.
func TestSetSetting_EmptyValueIsWritten(t *testing.T) {
	t.Parallel()

	store := options.NewMemoryStore()
	f := setupRouter(t, store)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "auto_load_next_post_foo", "bar"))

	w := post(t, f.router, url.Values{
		"action":  {"alnp_set_setting"},
		"setting": {"foo"},
		"value":   {""},
	})

	assert.Equal(t, "1", w.Body.String())

	got, err := store.Get(ctx, "auto_load_next_post_foo")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetSetting_EmptyKeyWritesPrefix(t *testing.T) {
	t.Parallel()

	store := options.NewMemoryStore()
	f := setupRouter(t, store)

	w := post(t, f.router, url.Values{
		"action": {"alnp_set_setting"},
		"value":  {"orphan"},
	})

	assert.Equal(t, "1", w.Body.String())

	got, err := store.Get(context.Background(), "auto_load_next_post_")
	require.NoError(t, err)
	assert.Equal(t, "orphan", got)
}

func TestSetSetting_StoreError(t *testing.T) {
	t.Parallel()

	f := setupRouter(t, failingStore{})

	w := post(t, f.router, url.Values{
		"action":  {"alnp_set_setting"},
		"setting": {"foo"},
		"value":   {"bar"},
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to save setting"}`, w.Body.String())
	assert.Empty(t, f.notifier.updates)
}

func TestDispatch_UnknownAction(t *testing.T) {
	t.Parallel()

	f := setupRouter(t, nil)

	for _, query := range []string{"action=alnp_delete_setting", "action=", "post_type=post"} {
		w := get(t, f.router, query)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		assert.Equal(t, "0", w.Body.String(), query)
	}
}

func TestDispatch_ActionInQueryForPost(t *testing.T) {
	t.Parallel()

	f := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, ajax.Path+"?action=alnp_set_setting",
		strings.NewReader(url.Values{"setting": {"foo"}, "value": {"bar"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, "1", w.Body.String())
}

func TestDispatch_AuthenticatedContext(t *testing.T) {
	t.Parallel()

	f := setupRouter(t, nil)

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &jwt.Claims{
		Sub: "admin",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, ajax.Path+"?action=alnp_get_comment_selectors", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["div#comments","section#comments"]`, w.Body.String())

	get(t, f.router, "action=alnp_get_comment_selectors")

	assert.InDelta(t, 1, counter(f, "get_comment_selectors", ajax.ContextPriv, metrics.OutcomeOK), 0)
	assert.InDelta(t, 1, counter(f, "get_comment_selectors", ajax.ContextNoPriv, metrics.OutcomeOK), 0)
}
