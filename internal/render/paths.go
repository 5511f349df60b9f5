package render

import (
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/blogsmith/internal/content"
)

// Output path helpers. Every artifact path is relative to the build root;
// URL helpers join them onto the configured base URL. Keeping both in one
// place stops page links and file writes from drifting apart.

// DocumentPath returns the output file path for a document page.
func DocumentPath(doc content.Document) string {
	return path.Join("posts", doc.Slug, "index.html")
}

// TagPath returns the output file path for a tag listing page.
func TagPath(tag string) string {
	return path.Join("tags", content.Slugify(tag), "index.html")
}

// SeriesPath returns the output file path for a series listing page.
func SeriesPath(series string) string {
	return path.Join("series", content.Slugify(series), "index.html")
}

// HomePath returns the output file path for home index page n (1-based).
func HomePath(page int) string {
	if page <= 1 {
		return "index.html"
	}
	return path.Join("page", fmt.Sprintf("%d", page), "index.html")
}

// TagsIndexPath is the listing of all tags.
const TagsIndexPath = "tags/index.html"

// SeriesIndexPath is the listing of all series.
const SeriesIndexPath = "series/index.html"

// ArchivePath is the flat chronological archive page.
const ArchivePath = "archive/index.html"

// RSSPath is the RSS 2.0 feed artifact.
const RSSPath = "index.xml"

// JSONFeedPath is the JSON Feed 1.1 artifact.
const JSONFeedPath = "feed.json"

// AbsoluteURL joins an output path onto the base URL, mapping the trailing
// index.html to its directory URL.
func AbsoluteURL(baseURL, outputPath string) string {
	p := strings.TrimSuffix(outputPath, "index.html")
	return strings.TrimRight(baseURL, "/") + "/" + p
}
