package sitebake

import "strings"

// Sitemap describes a "sitemap.xml" route list: an XML urlset with one
// <loc> entry of origin+path per route. Redirect sources are not listed.
func Sitemap(origin string) RouteListSpec {
	return RouteListSpec{
		FileName: "sitemap.xml",
		Render: func(paths []string) string {
			var b strings.Builder
			b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
			b.WriteString("<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n")
			entries := make([]string, 0, len(paths))
			for _, p := range paths {
				entries = append(entries, "  <url>\n    <loc>"+origin+p+"</loc>\n  </url>")
			}
			b.WriteString(strings.Join(entries, "\n"))
			b.WriteString("\n</urlset>")
			return b.String()
		},
		IncludeRedirects: false,
	}
}
