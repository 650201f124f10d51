// Package site assembles a route table from a manifest and its content tree
// and renders it. It is the glue between the manifest, the content loader,
// and the sitebake library.
package site

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitebake"
	"git.home.luguber.info/inful/sitebake/internal/content"
	"git.home.luguber.info/inful/sitebake/internal/manifest"
)

// Build composes a fresh router from the manifest's content tree, explicit
// routes, and redirects. Relative manifest paths are resolved against
// baseDir (the manifest's directory).
func Build(m *manifest.Manifest, baseDir string) (*sitebake.Router, error) {
	r, err := content.Load(resolve(baseDir, m.Content))
	if err != nil {
		return nil, err
	}

	for _, rt := range m.Routes {
		page, err := content.Page(resolve(baseDir, rt.Source))
		if err != nil {
			return nil, err
		}
		if err := r.AddPage(rt.Path, page); err != nil {
			return nil, fmt.Errorf("manifest route %q: %w", rt.Path, err)
		}
	}

	for _, rd := range m.Redirects {
		if err := r.AddRedirect(rd.Source, rd.Target); err != nil {
			return nil, fmt.Errorf("manifest redirect %q: %w", rd.Source, err)
		}
	}

	return r, nil
}

// Render builds the router and writes the site to the manifest's output
// directory. outputOverride, when non-empty, wins over the manifest.
func Render(m *manifest.Manifest, baseDir, outputOverride string) error {
	r, err := Build(m, baseDir)
	if err != nil {
		return err
	}

	output := m.Output
	if outputOverride != "" {
		output = outputOverride
	}
	return r.Render(resolve(baseDir, output), m.RenderConfig())
}

// RenderToMap builds the router and renders it in memory.
func RenderToMap(m *manifest.Manifest, baseDir string) (*sitebake.OutputMap, error) {
	r, err := Build(m, baseDir)
	if err != nil {
		return nil, err
	}
	return r.RenderToMap(m.RenderConfig())
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
