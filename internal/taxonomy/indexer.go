package taxonomy

import (
	"sort"

	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/util/sets"
)

// Index holds the derived reverse indices for one build. It is recomputed
// wholesale from the document set on every run; nothing mutates it in place.
type Index struct {
	// Tags maps tag name to member documents, newest first.
	Tags map[string][]content.Document
	// Series maps series name to member documents ordered by explicit part
	// number, falling back to publication timestamp ascending.
	Series map[string][]content.Document
}

// SeriesWarning records a document referencing a series no other document
// establishes. Usually a typo in the series front matter key.
type SeriesWarning struct {
	DocumentID string
	Series     string
}

// Build derives tag and series indices from the given document set. Pure:
// the input slice is not mutated and the same input yields the same index.
//
// A series needs at least two member documents to exist; a lone reference
// produces a SeriesWarning and the document renders without series
// navigation. Documents with an empty tag list contribute to no tag entry.
func Build(docs []content.Document) (Index, []SeriesWarning) {
	idx := Index{
		Tags:   make(map[string][]content.Document),
		Series: make(map[string][]content.Document),
	}

	seen := sets.New[string]()
	for _, doc := range docs {
		for _, tag := range doc.Tags {
			if tag == "" {
				continue
			}
			// A document lists each tag once even if authored twice.
			key := doc.ID + "\x00" + tag
			if seen.Has(key) {
				continue
			}
			seen.Add(key)
			idx.Tags[tag] = append(idx.Tags[tag], doc)
		}
		if !doc.Series.IsZero() {
			idx.Series[doc.Series.Name] = append(idx.Series[doc.Series.Name], doc)
		}
	}

	for tag := range idx.Tags {
		members := idx.Tags[tag]
		sort.SliceStable(members, func(i, j int) bool {
			if !members[i].Date.Equal(members[j].Date) {
				return members[i].Date.After(members[j].Date)
			}
			return members[i].ID < members[j].ID
		})
		idx.Tags[tag] = members
	}

	var warnings []SeriesWarning
	for name := range idx.Series {
		members := idx.Series[name]
		if len(members) < 2 {
			warnings = append(warnings, SeriesWarning{DocumentID: members[0].ID, Series: name})
			delete(idx.Series, name)
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return seriesLess(members[i], members[j])
		})
		idx.Series[name] = members
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].DocumentID < warnings[j].DocumentID })

	return idx, warnings
}

// seriesLess orders series members: explicit part numbers first in ascending
// numeric order, then unnumbered members by timestamp ascending.
func seriesLess(a, b content.Document) bool {
	pa, pb := a.SeriesPart(), b.SeriesPart()
	switch {
	case pa > 0 && pb > 0:
		if pa != pb {
			return pa < pb
		}
	case pa > 0:
		return true
	case pb > 0:
		return false
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

// TagNames returns all tag names in lexical order for deterministic listings.
func (idx Index) TagNames() []string {
	names := make([]string, 0, len(idx.Tags))
	for name := range idx.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SeriesNames returns all series names in lexical order.
func (idx Index) SeriesNames() []string {
	names := make([]string, 0, len(idx.Series))
	for name := range idx.Series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InSeries returns the members of the document's series and the document's
// position within it, or ok=false when the document has no resolvable series.
func (idx Index) InSeries(doc content.Document) (members []content.Document, pos int, ok bool) {
	if doc.Series.IsZero() {
		return nil, 0, false
	}
	members, exists := idx.Series[doc.Series.Name]
	if !exists {
		return nil, 0, false
	}
	for i, m := range members {
		if m.ID == doc.ID {
			return members, i, true
		}
	}
	return nil, 0, false
}
