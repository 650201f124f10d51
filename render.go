package sitebake

import (
	"fmt"
	"path"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// RenderConfig controls how a Router is turned into output artifacts.
type RenderConfig struct {
	// FallbackPageName is the page name fallbacks materialize under within
	// their scope. Empty means "404".
	FallbackPageName string
	// ResolveRedirectChains collapses multi-hop redirects into direct
	// source-to-final-target mappings before rendering.
	ResolveRedirectChains bool
	// RedirectPage renders the landing page written for each redirect
	// source. Nil skips redirect pages entirely.
	RedirectPage RedirectPageFunc
	// RedirectLists are auxiliary redirect manifest files to generate.
	RedirectLists []RedirectListSpec
	// RouteLists are auxiliary route listing files to generate.
	RouteLists []RouteListSpec
}

// DefaultRenderConfig returns the stock configuration: fallbacks named "404",
// no chain resolution, redirect pages rendered with DefaultRedirectPage, and
// no auxiliary files.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		FallbackPageName: "404",
		RedirectPage:     DefaultRedirectPage,
	}
}

// renderPlan is the flattened, render-ready table: every page path mapped to
// a deferred producer, plus auxiliary files keyed by their literal relative
// name.
type renderPlan struct {
	pages      map[string]PageFunc
	extraFiles map[string]func() string
	redirects  []Redirect
}

// OutputMap holds a fully rendered site in memory, keyed by route path for
// pages and by relative file name for auxiliary files. Redirects is the
// redirect set the site was rendered with (after optional chain resolution,
// sorted by source); hosts serve these sources even when no landing page is
// materialized, so link verification needs them.
type OutputMap struct {
	Pages      map[string]string
	ExtraFiles map[string]string
	Redirects  []Redirect
}

// plan flattens the router into a renderPlan and consumes it. Steps run in a
// fixed order because later steps must not collide with paths claimed
// earlier: chain resolution, redirect page materialization, fallback
// placement, then auxiliary file capture. Redirect lists see the redirect
// table as it stands after chain resolution, so each listed rule points
// directly at its final target.
func (r *Router) plan(cfg RenderConfig) (*renderPlan, error) {
	if err := r.checkUsable(); err != nil {
		return nil, err
	}
	r.consumed = true

	if cfg.FallbackPageName == "" {
		cfg.FallbackPageName = "404"
	}

	redirects := r.redirects
	if cfg.ResolveRedirectChains {
		resolved, err := resolveRedirects(redirects)
		if err != nil {
			return nil, err
		}
		redirects = resolved
	}

	pages := r.routes

	// Snapshot the declared page paths before redirect materialization so
	// route lists do not pick up redirect landing pages.
	declared := make([]string, 0, len(pages))
	for p := range pages {
		declared = append(declared, p)
	}

	if cfg.RedirectPage != nil {
		render := cfg.RedirectPage
		for source, target := range redirects {
			pages[source] = func() string { return render(target) }
		}
	}

	for scope, page := range r.fallbacks {
		p := scope
		if !strings.HasSuffix(p, "/") {
			p += "/"
		}
		p += cfg.FallbackPageName
		if _, ok := pages[p]; ok {
			return nil, fmt.Errorf("%w: %q already exists", ErrFallbackRouteConflict, p)
		}
		pages[p] = page
		declared = append(declared, p)
	}

	records := make([]Redirect, 0, len(redirects))
	for source, target := range redirects {
		records = append(records, Redirect{Source: source, Target: target})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Source < records[j].Source })

	extra := make(map[string]func() string, len(cfg.RedirectLists)+len(cfg.RouteLists))
	for _, spec := range cfg.RedirectLists {
		extra[spec.FileName] = func() string { return spec.Render(records) }
	}

	if len(cfg.RouteLists) > 0 {
		sort.Strings(declared)
		for _, spec := range cfg.RouteLists {
			listed := declared
			if spec.IncludeRedirects {
				listed = append([]string(nil), declared...)
				for source := range redirects {
					listed = append(listed, source)
				}
				sort.Strings(listed)
			}
			extra[spec.FileName] = func() string { return spec.Render(listed) }
		}
	}

	return &renderPlan{pages: pages, extraFiles: extra, redirects: records}, nil
}

// Render writes the site below outputDir, creating directories as needed.
// Page path "/" becomes index.html; "/a/b" becomes a/b.html; auxiliary files
// keep their literal names. The first failed write aborts the render.
func (r *Router) Render(outputDir string, cfg RenderConfig) error {
	return r.RenderFS(osfs.New(outputDir), cfg)
}

// RenderFS renders the site onto an arbitrary billy filesystem rooted at the
// site output directory.
func (r *Router) RenderFS(fs billy.Filesystem, cfg RenderConfig) error {
	plan, err := r.plan(cfg)
	if err != nil {
		return err
	}

	for p, page := range plan.pages {
		if err := writeArtifact(fs, pageFileName(p), page()); err != nil {
			return err
		}
	}
	for name, content := range plan.extraFiles {
		if err := writeArtifact(fs, name, content()); err != nil {
			return err
		}
	}
	return nil
}

// RenderToMap renders every page and auxiliary file into memory without
// touching storage. Pages are keyed by their route path, not the on-disk
// file name.
func (r *Router) RenderToMap(cfg RenderConfig) (*OutputMap, error) {
	plan, err := r.plan(cfg)
	if err != nil {
		return nil, err
	}

	out := &OutputMap{
		Pages:      make(map[string]string, len(plan.pages)),
		ExtraFiles: make(map[string]string, len(plan.extraFiles)),
		Redirects:  plan.redirects,
	}
	for p, page := range plan.pages {
		out.Pages[p] = page()
	}
	for name, content := range plan.extraFiles {
		out.ExtraFiles[name] = content()
	}
	return out, nil
}

// pageFileName maps a route path to its on-disk file name relative to the
// site root. A trailing slash does not open a directory: "/blog/" renders to
// blog.html, the same as "/blog".
func pageFileName(routePath string) string {
	rel := strings.Trim(routePath, "/")
	if rel == "" {
		rel = "index"
	}
	return rel + ".html"
}

func writeArtifact(fs billy.Filesystem, name, content string) error {
	if dir := path.Dir(name); dir != "." && dir != "/" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %w", ErrArtifactWrite, dir, err)
		}
	}
	if err := util.WriteFile(fs, name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, name, err)
	}
	return nil
}
