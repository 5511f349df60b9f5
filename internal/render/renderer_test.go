package render

import (
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/taxonomy"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:      "https://blog.example.com",
		LanguageCode: "en-us",
		Title:        "Test Blog",
		Taxonomies:   map[string]string{"tags": "tag", "series": "series"},
		Pagination:   config.PaginationConfig{PageSize: 10},
		Menu: config.MenuConfig{Main: []config.MenuEntry{
			{Name: "Home", URL: "/", Weight: 10},
		}},
	}
}

func testDoc(id, title string, d int, tags []string, series string) content.Document {
	ref := content.SeriesRef{}
	if series != "" {
		ref = content.SeriesRef{Name: series}
	}
	return content.Document{
		ID:      id,
		Slug:    content.Slugify(title),
		Title:   title,
		Date:    time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC),
		State:   content.StatePublished,
		Tags:    tags,
		Series:  ref,
		Body:    []byte("Hello **world**.\n"),
		Summary: []byte("Hello **world**."),
	}
}

func TestDocument_RendersBodyAndTags(t *testing.T) {
	r, err := NewRenderer(testConfig())
	require.NoError(t, err)

	doc := testDoc("a.md", "Hello Post", 1, []string{"design"}, "")
	idx, _ := taxonomy.Build([]content.Document{doc})

	out, err := r.Document(doc, idx)
	require.NoError(t, err)
	html := string(out)
	require.Contains(t, html, "<h1>Hello Post</h1>")
	require.Contains(t, html, "<strong>world</strong>")
	require.Contains(t, html, "tags/design/")
	require.Contains(t, html, "Test Blog")
	require.NotContains(t, html, "series-nav")
}

func TestDocument_SeriesNavigation(t *testing.T) {
	r, err := NewRenderer(testConfig())
	require.NoError(t, err)

	one := testDoc("one.md", "Skeleton #01", 1, nil, "skeleton")
	two := testDoc("two.md", "Skeleton #02", 2, nil, "skeleton")
	three := testDoc("three.md", "Skeleton #03", 3, nil, "skeleton")
	idx, _ := taxonomy.Build([]content.Document{one, two, three})

	out, err := r.Document(two, idx)
	require.NoError(t, err)
	html := string(out)
	require.Contains(t, html, "Part 2 of 3")
	require.Contains(t, html, "Skeleton #01")
	require.Contains(t, html, "Skeleton #03")
}

func TestDocument_PureInputNotMutated(t *testing.T) {
	r, err := NewRenderer(testConfig())
	require.NoError(t, err)

	doc := testDoc("a.md", "Hello", 1, []string{"x"}, "")
	before := doc
	idx, _ := taxonomy.Build([]content.Document{doc})

	first, err := r.Document(doc, idx)
	require.NoError(t, err)
	second, err := r.Document(doc, idx)
	require.NoError(t, err)
	require.Equal(t, first, second, "rendering must be deterministic")
	require.Equal(t, before, doc)
}

func TestHomePage_Pagination(t *testing.T) {
	r, err := NewRenderer(testConfig())
	require.NoError(t, err)

	docs := make([]content.Document, 0, 25)
	for i := 0; i < 25; i++ {
		docs = append(docs, testDoc("p.md", "Post", 1+i%27, nil, ""))
	}

	pages := Paginate(docs, 10)
	require.Len(t, pages, 3)
	require.Len(t, pages[0], 10)
	require.Len(t, pages[2], 5)

	out, err := r.HomePage(docs, 1)
	require.NoError(t, err)
	require.Contains(t, string(out), "Page 1 of 3")
	require.NotContains(t, string(out), "Newer")

	out, err = r.HomePage(docs, 3)
	require.NoError(t, err)
	require.Contains(t, string(out), "Page 3 of 3")
	require.NotContains(t, string(out), "Older")

	_, err = r.HomePage(docs, 4)
	require.Error(t, err, "page beyond the last must be absent")
}

func TestPaginate_EmptySetYieldsSingleEmptyPage(t *testing.T) {
	pages := Paginate(nil, 10)
	require.Len(t, pages, 1)
	require.Empty(t, pages[0])
}

func TestTagPage_ListsMembers(t *testing.T) {
	r, err := NewRenderer(testConfig())
	require.NoError(t, err)

	docs := []content.Document{
		testDoc("a.md", "First", 1, []string{"go"}, ""),
		testDoc("b.md", "Second", 2, []string{"go"}, ""),
	}
	idx, _ := taxonomy.Build(docs)

	out, err := r.TagPage("go", idx.Tags["go"])
	require.NoError(t, err)
	require.Contains(t, string(out), "First")
	require.Contains(t, string(out), "Second")
	require.Contains(t, string(out), "Tag: go")
}

func TestTagsIndex_CountsAndOrder(t *testing.T) {
	r, err := NewRenderer(testConfig())
	require.NoError(t, err)

	docs := []content.Document{
		testDoc("a.md", "A", 1, []string{"zeta", "alpha"}, ""),
		testDoc("b.md", "B", 2, []string{"alpha"}, ""),
	}
	idx, _ := taxonomy.Build(docs)

	out, err := r.TagsIndex(idx)
	require.NoError(t, err)
	html := string(out)
	require.Contains(t, html, "alpha")
	require.Contains(t, html, "(2)")
	require.Less(t, indexOf(html, "alpha"), indexOf(html, "zeta"))
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestRSS_RoundTripsTitleDateAndTags(t *testing.T) {
	r, err := NewRenderer(testConfig())
	require.NoError(t, err)

	doc := testDoc("a.md", "Feed Post", 5, []string{"go", "design"}, "")
	out, err := r.RSS([]content.Document{doc})
	require.NoError(t, err)

	var feed rssFeed
	require.NoError(t, xml.Unmarshal(out, &feed))
	require.Len(t, feed.Channel.Items, 1)
	item := feed.Channel.Items[0]
	require.Equal(t, "Feed Post", item.Title)
	require.Equal(t, []string{"go", "design"}, item.Categories)

	ts, err := time.Parse(time.RFC1123Z, item.PubDate)
	require.NoError(t, err)
	require.True(t, ts.Equal(doc.Date))
}

func TestJSONFeed_RoundTripsTitleDateAndTags(t *testing.T) {
	r, err := NewRenderer(testConfig())
	require.NoError(t, err)

	doc := testDoc("a.md", "Feed Post", 5, []string{"go"}, "")
	out, err := r.JSONFeed([]content.Document{doc})
	require.NoError(t, err)

	var feed jsonFeed
	require.NoError(t, json.Unmarshal(out, &feed))
	require.Equal(t, "https://jsonfeed.org/version/1.1", feed.Version)
	require.Len(t, feed.Items, 1)
	require.Equal(t, "Feed Post", feed.Items[0].Title)
	require.Equal(t, []string{"go"}, feed.Items[0].Tags)

	ts, err := time.Parse(time.RFC3339, feed.Items[0].DatePublished)
	require.NoError(t, err)
	require.True(t, ts.Equal(doc.Date))
}

func TestPaths(t *testing.T) {
	doc := testDoc("a.md", "Hello World", 1, nil, "")
	require.Equal(t, "posts/hello-world/index.html", DocumentPath(doc))
	require.Equal(t, "tags/some-tag/index.html", TagPath("Some Tag"))
	require.Equal(t, "index.html", HomePath(1))
	require.Equal(t, "page/3/index.html", HomePath(3))
	require.Equal(t, "https://b.example/posts/hello-world/", AbsoluteURL("https://b.example/", DocumentPath(doc)))
}
