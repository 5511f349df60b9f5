package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/markdown"
	"git.home.luguber.info/inful/blogsmith/internal/taxonomy"
)

// Renderer maps documents and taxonomy entries to rendered page bytes.
// Rendering is a pure transformation of (input, configuration); the renderer
// holds only parsed templates and read-only configuration.
type Renderer struct {
	cfg   *config.Config
	tpl   *template.Template
	caser cases.Caser
}

// NewRenderer parses the built-in layouts against the given configuration.
func NewRenderer(cfg *config.Config) (*Renderer, error) {
	tag, err := language.Parse(cfg.LanguageCode)
	if err != nil {
		tag = language.English
	}

	tpl := template.New("layouts")
	for _, src := range []string{headerTemplate, footerTemplate, documentTemplate, listTemplate, termsTemplate} {
		if _, err := tpl.Parse(src); err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
	}

	return &Renderer{cfg: cfg, tpl: tpl, caser: cases.Title(tag)}, nil
}

// TitleCase renders a taxonomy term as a display heading using the site language.
func (r *Renderer) TitleCase(s string) string { return r.caser.String(s) }

// siteContext is the shared template context describing the site itself.
type siteContext struct {
	Title        string
	BaseURL      string
	LanguageCode string
	Menu         []config.MenuEntry
	Params       map[string]any
}

func (r *Renderer) site() siteContext {
	return siteContext{
		Title:        r.cfg.Title,
		BaseURL:      r.cfg.BaseURL,
		LanguageCode: r.cfg.LanguageCode,
		Menu:         r.cfg.SortedMenu(),
		Params:       r.cfg.Params,
	}
}

// link is a rendered reference to another page.
type link struct {
	Title string
	URL   string
}

// seriesNav carries the series navigation block for a document page.
type seriesNav struct {
	Title    string
	URL      string
	Position int // 1-based
	Total    int
	Prev     *link
	Next     *link
}

// listItem is one entry of a listing page.
type listItem struct {
	Title   string
	URL     string
	Date    time.Time
	Summary string
}

// pager describes pagination controls on the home index.
type pager struct {
	Page  int
	Total int
	Prev  string // URL of the newer page, empty on page 1
	Next  string // URL of the older page, empty on the last page
}

// termItem is one entry of a taxonomy terms overview.
type termItem struct {
	Title string
	URL   string
	Count int
}

// Document renders a single document page. The taxonomy index supplies
// series navigation when the document belongs to a known series.
func (r *Renderer) Document(doc content.Document, idx taxonomy.Index) ([]byte, error) {
	body, err := markdown.Render(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}

	tagLinks := make([]link, 0, len(doc.Tags))
	for _, tag := range doc.Tags {
		tagLinks = append(tagLinks, link{Title: tag, URL: AbsoluteURL(r.cfg.BaseURL, TagPath(tag))})
	}

	var nav *seriesNav
	if members, pos, ok := idx.InSeries(doc); ok {
		nav = &seriesNav{
			Title:    r.TitleCase(doc.Series.Name),
			URL:      AbsoluteURL(r.cfg.BaseURL, SeriesPath(doc.Series.Name)),
			Position: pos + 1,
			Total:    len(members),
		}
		if pos > 0 {
			prev := members[pos-1]
			nav.Prev = &link{Title: prev.Title, URL: AbsoluteURL(r.cfg.BaseURL, DocumentPath(prev))}
		}
		if pos+1 < len(members) {
			next := members[pos+1]
			nav.Next = &link{Title: next.Title, URL: AbsoluteURL(r.cfg.BaseURL, DocumentPath(next))}
		}
	}

	data := map[string]any{
		"Site":      r.site(),
		"PageTitle": doc.Title,
		"Doc":       doc,
		"Content":   template.HTML(body), // #nosec G203 -- author-owned markdown
		"TagLinks":  tagLinks,
		"SeriesNav": nav,
	}
	return r.execute("document", data)
}

// TagPage renders the listing page for one tag (members newest first).
func (r *Renderer) TagPage(tag string, members []content.Document) ([]byte, error) {
	heading := fmt.Sprintf("%s: %s", r.TitleCase(r.cfg.TaxonomySingular("tags")), tag)
	data := map[string]any{
		"Site":      r.site(),
		"PageTitle": heading,
		"Heading":   heading,
		"Items":     r.items(members),
		"Pager":     (*pager)(nil),
	}
	return r.execute("list", data)
}

// SeriesPage renders the ordered listing page for one series.
func (r *Renderer) SeriesPage(series string, members []content.Document) ([]byte, error) {
	heading := r.TitleCase(series)
	data := map[string]any{
		"Site":      r.site(),
		"PageTitle": heading,
		"Heading":   heading,
		"Items":     r.items(members),
		"Pager":     (*pager)(nil),
	}
	return r.execute("list", data)
}

// HomePage renders home index page n (1-based) over the full home ordering.
// Page n covers offsets (n-1)*pageSize .. n*pageSize-1.
func (r *Renderer) HomePage(docs []content.Document, page int) ([]byte, error) {
	pages := Paginate(docs, r.cfg.Pagination.PageSize)
	if page < 1 || page > len(pages) {
		return nil, fmt.Errorf("home page %d out of range (1..%d)", page, len(pages))
	}

	pg := &pager{Page: page, Total: len(pages)}
	if page > 1 {
		pg.Prev = AbsoluteURL(r.cfg.BaseURL, HomePath(page-1))
	}
	if page < len(pages) {
		pg.Next = AbsoluteURL(r.cfg.BaseURL, HomePath(page+1))
	}

	data := map[string]any{
		"Site":      r.site(),
		"PageTitle": r.cfg.Title,
		"Heading":   r.cfg.Title,
		"Items":     r.items(pages[page-1]),
		"Pager":     pg,
	}
	return r.execute("list", data)
}

// ArchivePage renders the flat chronological archive.
func (r *Renderer) ArchivePage(docs []content.Document) ([]byte, error) {
	data := map[string]any{
		"Site":      r.site(),
		"PageTitle": "Archive",
		"Heading":   "Archive",
		"Items":     r.items(docs),
		"Pager":     (*pager)(nil),
	}
	return r.execute("list", data)
}

// TagsIndex renders the overview of all tags.
func (r *Renderer) TagsIndex(idx taxonomy.Index) ([]byte, error) {
	terms := make([]termItem, 0, len(idx.Tags))
	for _, name := range idx.TagNames() {
		terms = append(terms, termItem{
			Title: name,
			URL:   AbsoluteURL(r.cfg.BaseURL, TagPath(name)),
			Count: len(idx.Tags[name]),
		})
	}
	data := map[string]any{
		"Site":      r.site(),
		"PageTitle": "Tags",
		"Heading":   "Tags",
		"Terms":     terms,
	}
	return r.execute("terms", data)
}

// SeriesIndex renders the overview of all series.
func (r *Renderer) SeriesIndex(idx taxonomy.Index) ([]byte, error) {
	terms := make([]termItem, 0, len(idx.Series))
	for _, name := range idx.SeriesNames() {
		terms = append(terms, termItem{
			Title: r.TitleCase(name),
			URL:   AbsoluteURL(r.cfg.BaseURL, SeriesPath(name)),
			Count: len(idx.Series[name]),
		})
	}
	data := map[string]any{
		"Site":      r.site(),
		"PageTitle": "Series",
		"Heading":   "Series",
		"Terms":     terms,
	}
	return r.execute("terms", data)
}

func (r *Renderer) items(docs []content.Document) []listItem {
	out := make([]listItem, 0, len(docs))
	for _, doc := range docs {
		summary, err := markdown.Render(doc.Summary)
		if err != nil {
			summary = nil
		}
		out = append(out, listItem{
			Title:   doc.Title,
			URL:     AbsoluteURL(r.cfg.BaseURL, DocumentPath(doc)),
			Date:    doc.Date,
			Summary: markdown.PlainText(summary),
		})
	}
	return out
}

func (r *Renderer) execute(name string, data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Paginate splits docs into pages of pageSize, preserving order. The result
// has no trailing empty page; zero documents yield a single empty page so the
// home index always exists.
func Paginate(docs []content.Document, pageSize int) [][]content.Document {
	if pageSize <= 0 {
		pageSize = 10
	}
	if len(docs) == 0 {
		return [][]content.Document{{}}
	}
	var pages [][]content.Document
	for start := 0; start < len(docs); start += pageSize {
		end := start + pageSize
		if end > len(docs) {
			end = len(docs)
		}
		pages = append(pages, docs[start:end])
	}
	return pages
}
