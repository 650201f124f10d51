// Package linkcheck verifies that internal links in a rendered site resolve
// to a page, a redirect source, or an auxiliary file. It operates on an
// in-memory render, so verification never needs the site on disk.
package linkcheck

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebake"
	"git.home.luguber.info/inful/sitebake/internal/util/sets"
)

// BrokenLink is an internal link whose target does not exist in the rendered
// site.
type BrokenLink struct {
	// Page is the route path of the page containing the link.
	Page string
	// Target is the link destination as written in the page.
	Target string
}

// Check parses every rendered page and reports internal links that resolve
// to nothing. A link resolves when it hits a page, a redirect source (the
// host serves those even when no landing page was materialized), or an
// auxiliary file. External links (anything with a scheme or
// protocol-relative) are ignored. The result is sorted by page, then target.
func Check(out *sitebake.OutputMap) ([]BrokenLink, error) {
	known := sets.New[string]()
	for p := range out.Pages {
		known.Add(p)
		known.Add(fileNameFor(p))
	}
	for _, rd := range out.Redirects {
		known.Add(rd.Source)
	}
	for name := range out.ExtraFiles {
		known.Add("/" + name)
	}

	var broken []BrokenLink
	for pagePath, content := range out.Pages {
		targets, err := extractTargets(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", pagePath, err)
		}
		for _, target := range targets {
			norm := normalize(target)
			if norm == "" {
				continue
			}
			if resolves(known, norm) {
				continue
			}
			broken = append(broken, BrokenLink{Page: pagePath, Target: target})
		}
	}

	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Page != broken[j].Page {
			return broken[i].Page < broken[j].Page
		}
		return broken[i].Target < broken[j].Target
	})
	return broken, nil
}

func resolves(known sets.Set[string], target string) bool {
	// A link to "/blog" may land on the "/blog/" page.
	return known.Has(target) || known.Has(target+"/")
}

// normalize strips fragment and query and rejects non-internal targets.
func normalize(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ""
	}
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	return target
}

// extractTargets collects href and src attributes from anchors, images,
// scripts, and link tags.
func extractTargets(content string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var targets []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				targets = append(targets, attrValue(n, "href")...)
			case "img", "script":
				targets = append(targets, attrValue(n, "src")...)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return targets, nil
}

func attrValue(n *html.Node, key string) []string {
	for _, attr := range n.Attr {
		if attr.Key == key && attr.Val != "" {
			return []string{attr.Val}
		}
	}
	return nil
}

// fileNameFor mirrors the on-disk layout of rendered pages, with a leading
// slash so it is comparable to link targets.
func fileNameFor(routePath string) string {
	rel := strings.Trim(routePath, "/")
	if rel == "" {
		rel = "index"
	}
	return "/" + rel + ".html"
}
