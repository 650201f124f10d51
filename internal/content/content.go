// Package content turns a directory tree of markdown files into a route
// table. Every directory becomes a nested sub-router, so the on-disk layout
// of the content tree is the URL layout of the site.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/sitebake"
)

// Load builds a router from the markdown files under dir. index.md and
// README.md map to their directory's own path; every other file maps to its
// base name. A file named 404.md registers the directory's fallback page
// instead of a route.
func Load(dir string) (*sitebake.Router, error) {
	r := sitebake.New()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if entry.IsDir() {
			sub, err := Load(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			if err := r.Nest("/"+name, sub); err != nil {
				return nil, err
			}
			continue
		}

		if !strings.HasSuffix(name, ".md") {
			continue
		}

		page, err := Page(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		switch base := strings.TrimSuffix(name, ".md"); base {
		case "index", "README":
			err = r.AddPage("/", page)
		case "404":
			err = r.Fallback(page)
		default:
			err = r.AddPage("/"+base, page)
		}
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Page converts a single markdown file into a page producer. Conversion
// happens here, at composition time, so I/O and markdown errors surface as
// errors instead of disappearing inside a producer.
func Page(path string) (sitebake.PageFunc, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page source: %w", err)
	}

	var body strings.Builder
	if err := goldmark.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}

	html := wrapDocument(title(src), body.String())
	return func() string { return html }, nil
}

// title returns the first ATX heading of the markdown source, or the empty
// string when there is none.
func title(src []byte) string {
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

func wrapDocument(pageTitle, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	if pageTitle != "" {
		b.WriteString("    <title>" + pageTitle + "</title>\n")
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>")
	return b.String()
}
