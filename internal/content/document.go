package content

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/util/sets"
)

// PublicationState is a typed publication lifecycle marker. Using a closed
// enum instead of a bare bool keeps draft handling in one place: a document
// is either published or a draft, never an ambiguous third thing.
type PublicationState string

const (
	StatePublished PublicationState = "published"
	StateDraft     PublicationState = "draft"
)

// SeriesRef is an optional reference to a named series. The zero value means
// "no series"; there is no way to construct a half-filled reference.
type SeriesRef struct {
	Name string
}

// IsZero reports whether no series is referenced.
func (s SeriesRef) IsZero() bool { return s.Name == "" }

// Document is one loaded content file: parsed metadata plus the raw Markdown
// body. The body is opaque to the loader; rendering happens later.
type Document struct {
	ID      string           // Source path relative to the content directory
	Slug    string           // URL-safe name derived from the file name
	Title   string
	Date    time.Time
	State   PublicationState
	Tags    []string  // Display order as authored; membership is set semantics
	Series  SeriesRef
	Cover   string
	Body    []byte // Markdown body, frontmatter removed
	Summary []byte // First block before the <!--more--> marker
}

// Draft reports whether the document is excluded from production output.
func (d *Document) Draft() bool { return d.State == StateDraft }

// TagSet returns the document's tags with set semantics.
func (d *Document) TagSet() sets.Set[string] { return sets.New(d.Tags...) }

// HasTag reports tag membership regardless of authored order.
func (d *Document) HasTag(tag string) bool { return d.TagSet().Has(tag) }

// partPattern matches an explicit series part number encoded in a title,
// e.g. "Walking Skeleton #03: The First Slice".
var partPattern = regexp.MustCompile(`#(\d+)`)

// SeriesPart returns the explicit part number encoded in the title, or 0 when
// the title carries none. Part numbers order documents within a series ahead
// of publication timestamps.
func (d *Document) SeriesPart() int {
	m := partPattern.FindStringSubmatch(d.Title)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Slugify converts a file or taxonomy name to a URL-safe slug. Only
// lowercase letters, digits, and hyphens survive; any other run of
// characters collapses to a single hyphen. Titles like "Part #03: Intro"
// must not leak URL delimiters into output paths.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// slugFromPath derives a document slug from its source path.
func slugFromPath(relPath string) string {
	base := filepath.Base(relPath)
	return Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}
