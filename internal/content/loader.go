package content

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cerrors "git.home.luguber.info/inful/blogsmith/internal/content/errors"
	"git.home.luguber.info/inful/blogsmith/internal/frontmatter"
	"git.home.luguber.info/inful/blogsmith/internal/logfields"
)

// CutMarker separates the summary excerpt from the rest of a document body.
var CutMarker = []byte("<!--more-->")

// Loader discovers and parses content documents under a root directory.
// Re-scanning the same unchanged directory yields the same set of documents.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at the given content directory.
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// Load walks the content tree and parses every Markdown document found.
// Any malformed document aborts the whole load: partial document sets would
// silently drop entries from taxonomy indices.
func (l *Loader) Load() ([]Document, error) {
	if fi, err := os.Stat(l.root); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", cerrors.ErrContentDirNotFound, l.root)
	}

	var docs []Document
	err := filepath.Walk(l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		// Skip hidden files
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if !isMarkdownFile(path) {
			return nil
		}

		relPath, err := filepath.Rel(l.root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}

		doc, err := l.parseFile(path, relPath)
		if err != nil {
			return err
		}
		docs = append(docs, doc)

		slog.Debug("Loaded document",
			logfields.Document(doc.ID),
			slog.String("state", string(doc.State)),
			slog.Int("tags", len(doc.Tags)))
		return nil
	})
	if err != nil {
		// Keep loader-level sentinels intact; wrap everything else as a walk failure.
		if isLoaderError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", cerrors.ErrContentDirWalkFailed, l.root, err)
	}

	// Walk order is already lexical per directory, but make the whole set
	// deterministic across platforms.
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	slog.Info("Content loaded", logfields.Count(len(docs)), logfields.Path(l.root))
	return docs, nil
}

// parseFile reads one content file and builds a Document from it.
func (l *Loader) parseFile(path, relPath string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", cerrors.ErrFileReadFailed, relPath, err)
	}

	fm, body, had, _, err := frontmatter.Split(raw)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", cerrors.ErrMalformedMetadata, relPath, err)
	}
	if !had {
		return Document{}, fmt.Errorf("%w: %s: missing front matter block", cerrors.ErrMalformedMetadata, relPath)
	}

	fields, err := frontmatter.Decode(fm)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", cerrors.ErrMalformedMetadata, relPath, err)
	}
	if fields.Title == "" {
		return Document{}, fmt.Errorf("%w: %s: title is required", cerrors.ErrMalformedMetadata, relPath)
	}
	if fields.Date == "" {
		return Document{}, fmt.Errorf("%w: %s: date is required", cerrors.ErrMalformedMetadata, relPath)
	}
	ts, err := frontmatter.ParseDate(fields.Date)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", cerrors.ErrMalformedMetadata, relPath, err)
	}

	state := StatePublished
	if fields.Draft {
		state = StateDraft
	}

	series := SeriesRef{}
	if fields.Series != "" {
		series = SeriesRef{Name: fields.Series}
	}

	return Document{
		ID:      filepath.ToSlash(relPath),
		Slug:    slugFromPath(relPath),
		Title:   fields.Title,
		Date:    ts,
		State:   state,
		Tags:    fields.Tags,
		Series:  series,
		Cover:   fields.Cover,
		Body:    body,
		Summary: extractSummary(body),
	}, nil
}

// extractSummary returns the content before the cut marker, or the first
// paragraph when no marker is present.
func extractSummary(body []byte) []byte {
	if idx := bytes.Index(body, CutMarker); idx >= 0 {
		return bytes.TrimSpace(body[:idx])
	}
	trimmed := bytes.TrimSpace(body)
	if idx := bytes.Index(trimmed, []byte("\n\n")); idx >= 0 {
		return bytes.TrimSpace(trimmed[:idx])
	}
	return trimmed
}

// isMarkdownFile checks if a file is a markdown file
func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}

// isLoaderError reports whether err already carries one of this package's sentinels.
func isLoaderError(err error) bool {
	for _, sentinel := range []error{
		cerrors.ErrMalformedMetadata,
		cerrors.ErrFileReadFailed,
		cerrors.ErrContentDirNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
