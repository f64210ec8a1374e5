package selectors_test

import (
	"strings"
	"testing"

	"github.com/jonesrussell/autoload-next-post/internal/selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"main.site-main", "main#main", "main.post-wrap", "div#main",
		"div.site-content", "div#content", "div.content-container",
	}, selectors.For(selectors.Container))

	assert.Equal(t, []string{
		"h1.entry-title", "h1.post-title", "h1.page-title", "h1.title-single", "h1",
	}, selectors.For(selectors.Title))

	assert.Len(t, selectors.For(selectors.PostNavigation), 8)
	assert.Equal(t, []string{"div#comments", "section#comments"}, selectors.For(selectors.Comments))
	assert.Nil(t, selectors.For("sidebar"))
}

func TestFor_ReturnsCopy(t *testing.T) {
	t.Parallel()

	list := selectors.For(selectors.Title)
	list[0] = "mutated"

	assert.Equal(t, "h1.entry-title", selectors.For(selectors.Title)[0])
}

func TestCategories(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []selectors.Category{
		selectors.Container, selectors.Title, selectors.PostNavigation, selectors.Comments,
	}, selectors.Categories())

	for _, c := range selectors.Categories() {
		assert.NotEmpty(t, selectors.For(c), c)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, selectors.Validate())
}

func TestDetect(t *testing.T) {
	t.Parallel()

	page := `<!DOCTYPE html>
<html><body>
<main id="main">
  <article>
    <h1 class="entry-title">Hello world</h1>
    <nav class="navigation post-navigation"><a href="/prev">Prev</a></nav>
  </article>
</main>
</body></html>`

	found, err := selectors.Detect(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "main#main", found[selectors.Container])
	assert.Equal(t, "h1.entry-title", found[selectors.Title])
	assert.Equal(t, "nav.post-navigation", found[selectors.PostNavigation])

	_, ok := found[selectors.Comments]
	assert.False(t, ok)
}

func TestDetect_FirstMatchWins(t *testing.T) {
	t.Parallel()

	page := `<div id="main"><main class="site-main"><h1>Plain</h1></main>` +
		`<section id="comments"></section><div id="comments"></div></div>`

	found, err := selectors.Detect(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "main.site-main", found[selectors.Container])
	assert.Equal(t, "h1", found[selectors.Title])
	assert.Equal(t, "div#comments", found[selectors.Comments])
}
