package sitebake

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitebake/internal/util/sets"
)

// Redirect is one source path pointing at a target path.
type Redirect struct {
	Source string
	Target string
}

// RedirectPageFunc renders the landing page for a single redirect, given the
// target path the page should forward to.
type RedirectPageFunc func(target string) string

// RedirectListSpec generates an auxiliary file describing the full redirect
// set, in whatever format a static hosting platform expects.
type RedirectListSpec struct {
	// FileName is the output file, relative to the site root.
	FileName string
	// Render turns the redirect set into the file's content.
	Render func(redirects []Redirect) string
}

// RouteListSpec generates an auxiliary file listing the site's routes, e.g. a
// sitemap.
type RouteListSpec struct {
	// FileName is the output file, relative to the site root.
	FileName string
	// Render turns the route paths into the file's content.
	Render func(paths []string) string
	// IncludeRedirects appends redirect source paths to the listed routes.
	IncludeRedirects bool
}

// DefaultRedirectPage renders an HTML document that forwards to target via a
// meta refresh, falling back to a script redirect and finally a plain link.
func DefaultRedirectPage(target string) string {
	return fmt.Sprintf(`<!DOCTYPE HTML>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta http-equiv="refresh" content="0; url=%[1]s">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Page Redirection</title>
</head>
<body>
    <script>
        (function() {
            window.location.replace("%[1]s");
        })();
    </script>

    <p>Redirecting to <a href="%[1]s">%[1]s</a>...</p>
</body>
</html>`, target)
}

// CloudflareRedirects describes the "_redirects" rule file used by
// Cloudflare Pages and similar edge hosts: one "source target" line per
// redirect.
func CloudflareRedirects() RedirectListSpec {
	return RedirectListSpec{
		FileName: "_redirects",
		Render: func(redirects []Redirect) string {
			lines := make([]string, 0, len(redirects))
			for _, rd := range redirects {
				lines = append(lines, rd.Source+" "+rd.Target)
			}
			return strings.Join(lines, "\n")
		},
	}
}

// StaticWebServerRedirects describes the "config.toml" advanced section used
// by Static Web Server: one [[advanced.redirects]] table per redirect.
func StaticWebServerRedirects() RedirectListSpec {
	return RedirectListSpec{
		FileName: "config.toml",
		Render: func(redirects []Redirect) string {
			var b strings.Builder
			b.WriteString("[advanced]\n\n")
			blocks := make([]string, 0, len(redirects))
			for _, rd := range redirects {
				blocks = append(blocks, fmt.Sprintf(
					"[[advanced.redirects]]\nsource = %q\ndestination = %q\nkind = 302",
					rd.Source, rd.Target))
			}
			b.WriteString(strings.Join(blocks, "\n\n"))
			return b.String()
		},
	}
}

// resolveRedirects collapses redirect chains so that every source maps
// directly to its final target. A chain that revisits one of its own
// intermediate hops is a cycle and aborts the build.
func resolveRedirects(redirects map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(redirects))

	for source, target := range redirects {
		visited := sets.New(source)
		final := target
		for {
			next, ok := redirects[final]
			if !ok {
				break
			}
			if visited.Has(next) {
				return nil, fmt.Errorf("%w: starting at %q", ErrRedirectCycle, next)
			}
			visited.Add(final)
			final = next
		}
		resolved[source] = final
	}

	return resolved, nil
}
