package sitebake

// Sentinel errors for table composition and rendering. All of them are
// configuration errors: the build aborts, nothing is retried, and callers are
// expected to fix the route table and rebuild. Wrapping adds the offending
// path via fmt.Errorf so errors.Is keeps working.

import "errors"

var (
	// ErrInvalidPath indicates a path was empty or missing the leading slash.
	ErrInvalidPath = errors.New("invalid path")
	// ErrRouteConflict indicates a path was registered twice across pages and redirects.
	ErrRouteConflict = errors.New("route conflict")
	// ErrFallbackConflict indicates two fallbacks were registered for the same scope.
	ErrFallbackConflict = errors.New("fallback conflict")
	// ErrFallbackRouteConflict indicates a materialized fallback path collided with a route.
	ErrFallbackRouteConflict = errors.New("fallback route conflict")
	// ErrRedirectCycle indicates redirect chain resolution revisited a path.
	ErrRedirectCycle = errors.New("redirect cycle")
	// ErrRouterConsumed indicates a router was mutated or rendered after rendering.
	ErrRouterConsumed = errors.New("router already rendered")
	// ErrArtifactWrite indicates writing a rendered artifact failed.
	ErrArtifactWrite = errors.New("artifact write failed")
)
