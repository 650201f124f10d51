// Package sitebake composes route tables for static sites and renders them
// into deployable artifacts. Callers register paths mapped to page producers
// or redirect targets, optionally nest sub-routers under prefixes, and then
// render the finished table to disk or into an in-memory map.
//
// A Router is a plain in-memory builder: single-goroutine, validated on every
// insertion, and consumed by exactly one render call.
package sitebake

import (
	"fmt"
	"strings"
)

// PageFunc produces the content of a single page. It is invoked at most once,
// during rendering; the router never inspects its output.
type PageFunc func() string

// Router maps logical paths to page producers, redirect targets, and
// fallback pages. The zero value is not usable; construct with New.
type Router struct {
	routes    map[string]PageFunc
	redirects map[string]string
	fallbacks map[string]PageFunc
	consumed  bool
}

// New returns an empty Router.
func New() *Router {
	return &Router{
		routes:    make(map[string]PageFunc),
		redirects: make(map[string]string),
		fallbacks: make(map[string]PageFunc),
	}
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path, use %q for the root route", ErrInvalidPath, "/")
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q must start with a slash", ErrInvalidPath, path)
	}
	return nil
}

func (r *Router) checkUsable() error {
	if r.consumed {
		return ErrRouterConsumed
	}
	return nil
}

// AddPage registers a page producer at path. The path must start with a slash
// and must not collide with an existing page or redirect source.
func (r *Router) AddPage(path string, page PageFunc) error {
	if err := r.checkUsable(); err != nil {
		return err
	}
	if err := validatePath(path); err != nil {
		return err
	}
	if _, ok := r.routes[path]; ok {
		return fmt.Errorf("%w: page %q already registered", ErrRouteConflict, path)
	}
	if _, ok := r.redirects[path]; ok {
		return fmt.Errorf("%w: %q already registered as a redirect", ErrRouteConflict, path)
	}
	r.routes[path] = page
	return nil
}

// AddRedirect registers a redirect from source to target. The target does not
// need to exist yet; forward references across merges are legal.
func (r *Router) AddRedirect(source, target string) error {
	if err := r.checkUsable(); err != nil {
		return err
	}
	if err := validatePath(source); err != nil {
		return err
	}
	if err := validatePath(target); err != nil {
		return err
	}
	if _, ok := r.routes[source]; ok {
		return fmt.Errorf("%w: %q already registered as a page", ErrRouteConflict, source)
	}
	if _, ok := r.redirects[source]; ok {
		return fmt.Errorf("%w: redirect %q already registered", ErrRouteConflict, source)
	}
	r.redirects[source] = target
	return nil
}

// SetFallback registers a fallback page for the given scope prefix. The
// fallback materializes during rendering as a page under the scope (by
// default at "<scope>/404"). Exactly one fallback is allowed per scope.
func (r *Router) SetFallback(scope string, page PageFunc) error {
	if err := r.checkUsable(); err != nil {
		return err
	}
	if err := validatePath(scope); err != nil {
		return err
	}
	if _, ok := r.fallbacks[scope]; ok {
		return fmt.Errorf("%w: fallback for %q already registered", ErrFallbackConflict, scope)
	}
	r.fallbacks[scope] = page
	return nil
}

// Fallback registers the top-level fallback page, scoped at "/".
func (r *Router) Fallback(page PageFunc) error {
	return r.SetFallback("/", page)
}

// Merge moves every page, redirect, and fallback from other into r and
// consumes other. The first key collision aborts with the corresponding
// conflict error; which collision is reported first is not part of the
// contract.
func (r *Router) Merge(other *Router) error {
	if err := r.checkUsable(); err != nil {
		return err
	}
	if err := other.checkUsable(); err != nil {
		return err
	}
	for source, target := range other.redirects {
		if _, ok := r.redirects[source]; ok {
			return fmt.Errorf("%w: redirect %q already registered", ErrRouteConflict, source)
		}
		if _, ok := r.routes[source]; ok {
			return fmt.Errorf("%w: %q already registered as a page", ErrRouteConflict, source)
		}
		r.redirects[source] = target
	}
	for path, page := range other.routes {
		if _, ok := r.routes[path]; ok {
			return fmt.Errorf("%w: page %q already registered", ErrRouteConflict, path)
		}
		if _, ok := r.redirects[path]; ok {
			return fmt.Errorf("%w: %q already registered as a redirect", ErrRouteConflict, path)
		}
		r.routes[path] = page
	}
	for scope, page := range other.fallbacks {
		if _, ok := r.fallbacks[scope]; ok {
			return fmt.Errorf("%w: fallback for %q already registered", ErrFallbackConflict, scope)
		}
		r.fallbacks[scope] = page
	}
	other.consumed = true
	return nil
}

// Nest merges sub into r with prefix prepended to every page path, redirect
// source and target, and fallback scope, consuming sub. A prefix of "/" is
// equivalent to no prefix; a trailing slash on any other prefix is stripped
// before concatenation. Conflict rules are the same as Merge.
func (r *Router) Nest(prefix string, sub *Router) error {
	if err := r.checkUsable(); err != nil {
		return err
	}
	if err := sub.checkUsable(); err != nil {
		return err
	}
	if err := validatePath(prefix); err != nil {
		return err
	}
	if prefix == "/" {
		prefix = ""
	} else {
		prefix = strings.TrimRight(prefix, "/")
	}

	shifted := New()
	for source, target := range sub.redirects {
		shifted.redirects[prefix+source] = prefix + target
	}
	for path, page := range sub.routes {
		shifted.routes[prefix+path] = page
	}
	for scope, page := range sub.fallbacks {
		shifted.fallbacks[prefix+scope] = page
	}
	if err := r.Merge(shifted); err != nil {
		return err
	}
	sub.consumed = true
	return nil
}

// Routes returns the currently registered page paths in unspecified order.
func (r *Router) Routes() []string {
	paths := make([]string, 0, len(r.routes))
	for path := range r.routes {
		paths = append(paths, path)
	}
	return paths
}

// Redirects returns the currently registered redirects in unspecified order.
func (r *Router) Redirects() []Redirect {
	list := make([]Redirect, 0, len(r.redirects))
	for source, target := range r.redirects {
		list = append(list, Redirect{Source: source, Target: target})
	}
	return list
}
