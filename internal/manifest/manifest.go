// Package manifest loads and validates the sitebake.yaml site manifest.
package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebake"
)

// ErrUnknownRedirectList indicates a redirect_lists entry named no built-in format.
var ErrUnknownRedirectList = errors.New("unknown redirect list format")

// Manifest describes a site: where its content lives, where output goes, and
// how redirects and auxiliary files are generated.
type Manifest struct {
	// Origin is the canonical site origin, e.g. "https://example.com".
	// Required when Sitemap is enabled.
	Origin string `yaml:"origin,omitempty"`
	// Output is the directory rendered artifacts are written to.
	Output string `yaml:"output"`
	// Content is the markdown content directory.
	Content string `yaml:"content"`
	// FallbackPage names the materialized fallback page within its scope.
	FallbackPage string `yaml:"fallback_page,omitempty"`
	// ResolveRedirectChains collapses multi-hop redirects before rendering.
	ResolveRedirectChains bool `yaml:"resolve_redirect_chains,omitempty"`
	// RedirectPages toggles HTML landing pages for redirects. Defaults to true.
	RedirectPages *bool `yaml:"redirect_pages,omitempty"`
	// RedirectLists names built-in redirect manifest formats to emit:
	// "cloudflare" or "static-web-server".
	RedirectLists []string `yaml:"redirect_lists,omitempty"`
	// Sitemap emits sitemap.xml listing every page under Origin.
	Sitemap bool `yaml:"sitemap,omitempty"`
	// Redirects are explicit source -> target mappings.
	Redirects []RedirectRule `yaml:"redirects,omitempty"`
	// Routes maps explicit paths to markdown sources outside the content tree.
	Routes []RouteRule `yaml:"routes,omitempty"`
}

// RedirectRule is one declared redirect.
type RedirectRule struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// RouteRule maps a route path to a markdown source file.
type RouteRule struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"`
}

// Load reads and validates a manifest file. A .env file in the working
// directory is loaded first so ${VAR} references in the manifest expand.
func Load(path string) (*Manifest, error) {
	// Missing .env is fine; only the manifest itself is required.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	m.applyDefaults()
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Output == "" {
		m.Output = "./site"
	}
	if m.Content == "" {
		m.Content = "./content"
	}
	if m.FallbackPage == "" {
		m.FallbackPage = "404"
	}
}

func (m *Manifest) validate() error {
	for _, name := range m.RedirectLists {
		if _, err := redirectListByName(name); err != nil {
			return err
		}
	}
	if m.Sitemap && m.Origin == "" {
		return fmt.Errorf("sitemap requires an origin")
	}
	for _, rd := range m.Redirects {
		if rd.Source == "" || rd.Target == "" {
			return fmt.Errorf("redirect needs both source and target, got %q -> %q", rd.Source, rd.Target)
		}
	}
	for _, rt := range m.Routes {
		if rt.Path == "" || rt.Source == "" {
			return fmt.Errorf("route needs both path and source, got %q -> %q", rt.Path, rt.Source)
		}
	}
	return nil
}

func redirectListByName(name string) (sitebake.RedirectListSpec, error) {
	switch name {
	case "cloudflare":
		return sitebake.CloudflareRedirects(), nil
	case "static-web-server":
		return sitebake.StaticWebServerRedirects(), nil
	default:
		return sitebake.RedirectListSpec{}, fmt.Errorf("%w: %q", ErrUnknownRedirectList, name)
	}
}

// RenderConfig translates the manifest into the library's render options.
func (m *Manifest) RenderConfig() sitebake.RenderConfig {
	cfg := sitebake.RenderConfig{
		FallbackPageName:      m.FallbackPage,
		ResolveRedirectChains: m.ResolveRedirectChains,
	}
	if m.RedirectPages == nil || *m.RedirectPages {
		cfg.RedirectPage = sitebake.DefaultRedirectPage
	}
	for _, name := range m.RedirectLists {
		// validate() already rejected unknown names.
		if spec, err := redirectListByName(name); err == nil {
			cfg.RedirectLists = append(cfg.RedirectLists, spec)
		}
	}
	if m.Sitemap {
		cfg.RouteLists = append(cfg.RouteLists, sitebake.Sitemap(m.Origin))
	}
	return cfg
}

// Starter is the manifest written by "sitebake init".
const Starter = `# sitebake site manifest
origin: https://example.com
output: ./site
content: ./content
fallback_page: "404"
resolve_redirect_chains: true
redirect_pages: true
redirect_lists:
  - cloudflare
sitemap: true
redirects: []
`
