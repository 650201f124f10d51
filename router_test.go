package sitebake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func page(content string) PageFunc {
	return func() string { return content }
}

func TestAddPage_Valid(t *testing.T) {
	r := New()
	require.NoError(t, r.AddPage("/", page("home")))
	require.NoError(t, r.AddPage("/about", page("about")))
	require.ElementsMatch(t, []string{"/", "/about"}, r.Routes())
}

func TestAddPage_InvalidPath(t *testing.T) {
	r := New()
	require.ErrorIs(t, r.AddPage("", page("x")), ErrInvalidPath)
	require.ErrorIs(t, r.AddPage("about", page("x")), ErrInvalidPath)
}

func TestAddPage_DuplicateFails(t *testing.T) {
	r := New()
	require.NoError(t, r.AddPage("/about", page("a")))
	require.ErrorIs(t, r.AddPage("/about", page("b")), ErrRouteConflict)
}

func TestAddPage_ConflictsWithRedirect(t *testing.T) {
	r := New()
	require.NoError(t, r.AddRedirect("/old", "/new"))
	require.ErrorIs(t, r.AddPage("/old", page("x")), ErrRouteConflict)
}

func TestAddRedirect_ValidatesBothPaths(t *testing.T) {
	r := New()
	require.ErrorIs(t, r.AddRedirect("old", "/new"), ErrInvalidPath)
	require.ErrorIs(t, r.AddRedirect("/old", "new"), ErrInvalidPath)
}

func TestAddRedirect_DanglingTargetAllowed(t *testing.T) {
	r := New()
	require.NoError(t, r.AddRedirect("/old", "/never-defined"))
}

func TestAddRedirect_DuplicateSourceFails(t *testing.T) {
	r := New()
	require.NoError(t, r.AddRedirect("/old", "/new"))
	require.ErrorIs(t, r.AddRedirect("/old", "/other"), ErrRouteConflict)
}

func TestSetFallback_OnePerScope(t *testing.T) {
	r := New()
	require.NoError(t, r.Fallback(page("404")))
	require.ErrorIs(t, r.Fallback(page("other")), ErrFallbackConflict)
	// A different scope is fine.
	require.NoError(t, r.SetFallback("/blog", page("blog 404")))
}

func TestMerge_DisjointUnion(t *testing.T) {
	a := New()
	require.NoError(t, a.AddPage("/", page("home")))
	require.NoError(t, a.AddRedirect("/old", "/"))

	b := New()
	require.NoError(t, b.AddPage("/blog", page("blog")))
	require.NoError(t, b.AddRedirect("/legacy", "/blog"))
	require.NoError(t, b.Fallback(page("404")))

	require.NoError(t, a.Merge(b))
	require.ElementsMatch(t, []string{"/", "/blog"}, a.Routes())
	require.ElementsMatch(t, []Redirect{
		{Source: "/old", Target: "/"},
		{Source: "/legacy", Target: "/blog"},
	}, a.Redirects())
}

func TestMerge_ConsumesOther(t *testing.T) {
	a := New()
	b := New()
	require.NoError(t, b.AddPage("/x", page("x")))
	require.NoError(t, a.Merge(b))
	require.ErrorIs(t, b.AddPage("/y", page("y")), ErrRouterConsumed)
}

func TestMerge_RouteConflict(t *testing.T) {
	a := New()
	require.NoError(t, a.AddPage("/about", page("a")))
	b := New()
	require.NoError(t, b.AddPage("/about", page("b")))
	require.ErrorIs(t, a.Merge(b), ErrRouteConflict)
}

func TestMerge_PageRedirectCrossConflict(t *testing.T) {
	a := New()
	require.NoError(t, a.AddPage("/about", page("a")))
	b := New()
	require.NoError(t, b.AddRedirect("/about", "/"))
	require.ErrorIs(t, a.Merge(b), ErrRouteConflict)
}

func TestMerge_FallbackConflict(t *testing.T) {
	a := New()
	require.NoError(t, a.Fallback(page("a")))
	b := New()
	require.NoError(t, b.Fallback(page("b")))
	require.ErrorIs(t, a.Merge(b), ErrFallbackConflict)
}

func TestNest_PrependsPrefixEverywhere(t *testing.T) {
	blog := New()
	require.NoError(t, blog.AddPage("/", page("blog home")))
	require.NoError(t, blog.AddPage("/post", page("post")))
	require.NoError(t, blog.AddRedirect("/old", "/post"))
	require.NoError(t, blog.Fallback(page("blog 404")))

	root := New()
	require.NoError(t, root.AddPage("/", page("home")))
	require.NoError(t, root.Nest("/blog", blog))

	require.ElementsMatch(t, []string{"/", "/blog/", "/blog/post"}, root.Routes())
	require.ElementsMatch(t, []Redirect{
		{Source: "/blog/old", Target: "/blog/post"},
	}, root.Redirects())

	out, err := root.RenderToMap(RenderConfig{})
	require.NoError(t, err)
	require.Equal(t, "blog 404", out.Pages["/blog/404"])
}

func TestNest_RootPrefixIsIdentity(t *testing.T) {
	sub := New()
	require.NoError(t, sub.AddPage("/about", page("about")))

	root := New()
	require.NoError(t, root.Nest("/", sub))
	require.ElementsMatch(t, []string{"/about"}, root.Routes())
}

func TestNest_TrailingSlashStripped(t *testing.T) {
	sub := New()
	require.NoError(t, sub.AddPage("/post", page("post")))

	root := New()
	require.NoError(t, root.Nest("/blog/", sub))
	require.ElementsMatch(t, []string{"/blog/post"}, root.Routes())
}

// Nesting must be indistinguishable from inserting the prefixed paths by hand.
func TestNest_EquivalentToManualPrefixing(t *testing.T) {
	sub := New()
	require.NoError(t, sub.AddPage("/", page("docs home")))
	require.NoError(t, sub.AddPage("/install", page("install")))
	require.NoError(t, sub.AddRedirect("/setup", "/install"))

	nested := New()
	require.NoError(t, nested.Nest("/docs", sub))

	manual := New()
	require.NoError(t, manual.AddPage("/docs/", page("docs home")))
	require.NoError(t, manual.AddPage("/docs/install", page("install")))
	require.NoError(t, manual.AddRedirect("/docs/setup", "/docs/install"))

	cfg := RenderConfig{RedirectPage: DefaultRedirectPage}
	a, err := nested.RenderToMap(cfg)
	require.NoError(t, err)
	b, err := manual.RenderToMap(cfg)
	require.NoError(t, err)
	require.Equal(t, b.Pages, a.Pages)
}

func TestNest_ConflictSurfaces(t *testing.T) {
	sub := New()
	require.NoError(t, sub.AddPage("/post", page("post")))

	root := New()
	require.NoError(t, root.AddPage("/blog/post", page("existing")))
	require.ErrorIs(t, root.Nest("/blog", sub), ErrRouteConflict)
}

func TestRouter_ConsumedByRender(t *testing.T) {
	r := New()
	require.NoError(t, r.AddPage("/", page("home")))
	_, err := r.RenderToMap(RenderConfig{})
	require.NoError(t, err)

	require.ErrorIs(t, r.AddPage("/late", page("late")), ErrRouterConsumed)
	_, err = r.RenderToMap(RenderConfig{})
	require.ErrorIs(t, err, ErrRouterConsumed)
}
