package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cerrors "git.home.luguber.info/inful/blogsmith/internal/content/errors"
)

func writeDoc(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_ParsesDocuments(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "posts/hello.md", "---\ntitle: Hello World\ndate: 2024-03-01\ntags: [design]\n---\nFirst paragraph.\n<!--more-->\nThe rest.\n")
	writeDoc(t, root, "posts/skeleton-01.md", "---\ntitle: \"Walking Skeleton #01\"\ndate: 2024-01-15\nseries: walking-skeleton\ndraft: true\n---\nBody.\n")

	docs, err := NewLoader(root).Load()
	require.NoError(t, err)
	require.Len(t, docs, 2)

	hello := docs[0]
	require.Equal(t, "posts/hello.md", hello.ID)
	require.Equal(t, "hello", hello.Slug)
	require.Equal(t, "Hello World", hello.Title)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), hello.Date)
	require.Equal(t, StatePublished, hello.State)
	require.True(t, hello.HasTag("design"))
	require.True(t, hello.Series.IsZero())
	require.Equal(t, "First paragraph.", string(hello.Summary))

	skel := docs[1]
	require.Equal(t, StateDraft, skel.State)
	require.True(t, skel.Draft())
	require.Equal(t, "walking-skeleton", skel.Series.Name)
	require.Equal(t, 1, skel.SeriesPart())
}

func TestLoad_Restartable_SameSetTwice(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "b.md", "---\ntitle: B\ndate: 2024-01-02\n---\nb\n")
	writeDoc(t, root, "a.md", "---\ntitle: A\ndate: 2024-01-01\n---\na\n")

	loader := NewLoader(root)
	first, err := loader.Load()
	require.NoError(t, err)
	second, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, "a.md", first[0].ID)
}

func TestLoad_MissingTitle_IsMalformedMetadata(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "bad.md", "---\ndate: 2024-01-01\n---\nbody\n")

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	require.True(t, errors.Is(err, cerrors.ErrMalformedMetadata))
	require.Contains(t, err.Error(), "bad.md")
}

func TestLoad_UnparseableDate_IsMalformedMetadata(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "bad.md", "---\ntitle: X\ndate: someday\n---\nbody\n")

	_, err := NewLoader(root).Load()
	require.True(t, errors.Is(err, cerrors.ErrMalformedMetadata))
}

func TestLoad_MissingFrontmatter_IsMalformedMetadata(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "bare.md", "# Just a heading\n")

	_, err := NewLoader(root).Load()
	require.True(t, errors.Is(err, cerrors.ErrMalformedMetadata))
}

func TestLoad_MalformedDocumentAbortsWholeLoad(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "good.md", "---\ntitle: Good\ndate: 2024-01-01\n---\nok\n")
	writeDoc(t, root, "zbad.md", "---\ntitle: Bad\n---\nno date\n")

	docs, err := NewLoader(root).Load()
	require.Error(t, err)
	require.Nil(t, docs)
}

func TestLoad_MissingContentDir(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope")).Load()
	require.True(t, errors.Is(err, cerrors.ErrContentDirNotFound))
}

func TestLoad_SkipsNonMarkdownAndHiddenFiles(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "post.md", "---\ntitle: P\ndate: 2024-01-01\n---\nok\n")
	writeDoc(t, root, ".draft.md", "not parsed")
	writeDoc(t, root, "diagram.svg", "<svg/>")

	docs, err := NewLoader(root).Load()
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestExtractSummary_FallsBackToFirstParagraph(t *testing.T) {
	body := []byte("Lead paragraph\nstill lead.\n\nSecond paragraph.\n")
	require.Equal(t, "Lead paragraph\nstill lead.", string(extractSummary(body)))
}

func TestSeriesPart_NoNumber_ReturnsZero(t *testing.T) {
	d := Document{Title: "No part here"}
	require.Equal(t, 0, d.SeriesPart())

	d = Document{Title: "Walking Skeleton #12: Deploys"}
	require.Equal(t, 12, d.SeriesPart())
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "hello-world", Slugify("Hello World"))
	require.Equal(t, "sum-types", Slugify("sum_types"))

	// Part-numbered titles are the common case for series documents;
	// URL delimiters must never reach an output path.
	require.Equal(t, "walking-skeleton-03-the-first-slice", Slugify("Walking Skeleton #03: The First Slice"))
	require.Equal(t, "what-s-next", Slugify("What's Next?"))
	require.Equal(t, "a-b", Slugify("a/b"))
	require.Equal(t, "trimmed", Slugify("  --Trimmed--  "))
	for _, slug := range []string{Slugify("Part #01: Go"), Slugify("q?&r")} {
		require.False(t, strings.ContainsAny(slug, "#:?&/ "), "slug %q carries URL delimiters", slug)
	}
}
