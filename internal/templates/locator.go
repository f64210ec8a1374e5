// Package templates finds where a theme keeps its single-post content
// template and records the directory per post type.
package templates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/internal/options"
)

// OptionPrefix namespaces the per-post-type directory record.
const OptionPrefix = options.SettingPrefix + "directory_"

// ErrEmptyPostType is returned for an empty post type.
var ErrEmptyPostType = errors.New("post type is empty")

// DefaultDirectories are the theme-relative directories searched, in order.
// The theme root itself is searched last and recorded as "".
var DefaultDirectories = []string{
	"template-parts/post/",
	"template-parts/single/",
	"template-parts/",
	"template-parts/content/",
	"template-parts/post-types/",
	"templates/parts/",
	"templates/",
	"template/",
	"parts/",
	"partials/",
	"loop-templates/",
	"content/",
	"includes/",
	"inc/",
}

// OptionName returns the option key holding postType's directory.
func OptionName(postType string) string {
	return OptionPrefix + postType
}

// Locator scans theme roots for content templates.
type Locator struct {
	store options.Store
	roots []string
	dirs  []string
	log   logger.Logger

	mu    sync.Mutex
	known map[string]struct{}
}

// NewLocator searches roots in order, child theme first. Empty roots are
// skipped. A nil dirs uses DefaultDirectories.
func NewLocator(store options.Store, roots []string, dirs []string, log logger.Logger) *Locator {
	if dirs == nil {
		dirs = DefaultDirectories
	}

	kept := make([]string, 0, len(roots))
	for _, r := range roots {
		if r != "" {
			kept = append(kept, r)
		}
	}

	return &Locator{
		store: store,
		roots: kept,
		dirs:  dirs,
		log:   log,
		known: make(map[string]struct{}),
	}
}

// Roots returns the theme roots being searched.
func (l *Locator) Roots() []string {
	out := make([]string, len(l.roots))
	copy(out, l.roots)
	return out
}

// Candidates lists the file names tried in each directory for postType.
func Candidates(postType string) []string {
	return []string{
		"content-single-" + postType + ".php",
		"content-" + postType + ".php",
		"content-single.php",
	}
}

// Scan searches the theme for postType's content template and records the
// directory it was found in. found is false when no candidate exists; the
// previous record, if any, is kept.
func (l *Locator) Scan(ctx context.Context, postType string) (dir string, found bool, err error) {
	if postType == "" {
		return "", false, ErrEmptyPostType
	}

	l.mu.Lock()
	l.known[postType] = struct{}{}
	l.mu.Unlock()

	dir, found, err = l.search(ctx, postType)
	if err != nil || !found {
		return "", found, err
	}

	if setErr := l.store.Set(ctx, OptionName(postType), dir); setErr != nil {
		return "", false, fmt.Errorf("record template directory: %w", setErr)
	}

	l.log.Debug("Template directory recorded",
		logger.String("post_type", postType),
		logger.String("directory", dir),
	)
	return dir, true, nil
}

func (l *Locator) search(ctx context.Context, postType string) (string, bool, error) {
	names := Candidates(postType)
	dirs := append(append([]string{}, l.dirs...), "")

	for _, root := range l.roots {
		for _, dir := range dirs {
			if err := ctx.Err(); err != nil {
				return "", false, err
			}
			for _, name := range names {
				info, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir), name))
				if err == nil && info.Mode().IsRegular() {
					return dir, true, nil
				}
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					return "", false, fmt.Errorf("stat template: %w", err)
				}
			}
		}
	}
	return "", false, nil
}

// Directory returns the recorded directory for postType, or nil when none
// has been recorded.
func (l *Locator) Directory(ctx context.Context, postType string) (*string, error) {
	value, err := l.store.Get(ctx, OptionName(postType))
	if errors.Is(err, options.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template directory: %w", err)
	}
	return &value, nil
}

// KnownPostTypes returns the post types scanned so far, sorted.
func (l *Locator) KnownPostTypes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.known))
	for pt := range l.known {
		out = append(out, pt)
	}
	sort.Strings(out)
	return out
}

// Restore marks every post type with a recorded directory as known, so a
// restarted service keeps rescanning them. It returns the number restored.
func (l *Locator) Restore(ctx context.Context) (int, error) {
	records, err := l.store.List(ctx, OptionPrefix)
	if err != nil {
		return 0, fmt.Errorf("list template directories: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	restored := 0
	for name := range records {
		postType := strings.TrimPrefix(name, OptionPrefix)
		if postType == "" {
			continue
		}
		if _, ok := l.known[postType]; !ok {
			l.known[postType] = struct{}{}
			restored++
		}
	}
	return restored, nil
}

// Rescan scans every known post type again.
func (l *Locator) Rescan(ctx context.Context) {
	for _, pt := range l.KnownPostTypes() {
		if _, _, err := l.Scan(ctx, pt); err != nil {
			l.log.Warn("Template rescan failed",
				logger.String("post_type", pt),
				logger.Error(err),
			)
		}
	}
}
