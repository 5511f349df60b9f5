package taxonomy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsmith/internal/content"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func doc(id, title string, date time.Time, tags []string, series string) content.Document {
	ref := content.SeriesRef{}
	if series != "" {
		ref = content.SeriesRef{Name: series}
	}
	return content.Document{ID: id, Title: title, Date: date, Tags: tags, Series: ref, State: content.StatePublished}
}

func TestBuild_TagMembership_ExactlyOnce(t *testing.T) {
	docs := []content.Document{
		doc("a.md", "A", day(1), []string{"go", "design", "go"}, ""),
		doc("b.md", "B", day(2), []string{"go"}, ""),
	}

	idx, warnings := Build(docs)
	require.Empty(t, warnings)
	require.Len(t, idx.Tags["go"], 2)
	require.Len(t, idx.Tags["design"], 1)

	count := 0
	for _, d := range idx.Tags["go"] {
		if d.ID == "a.md" {
			count++
		}
	}
	require.Equal(t, 1, count, "duplicate authored tag must index once")
}

func TestBuild_TagsOrderedNewestFirst(t *testing.T) {
	docs := []content.Document{
		doc("old.md", "Old", day(1), []string{"go"}, ""),
		doc("new.md", "New", day(5), []string{"go"}, ""),
		doc("mid.md", "Mid", day(3), []string{"go"}, ""),
	}

	idx, _ := Build(docs)
	got := []string{idx.Tags["go"][0].ID, idx.Tags["go"][1].ID, idx.Tags["go"][2].ID}
	require.Equal(t, []string{"new.md", "mid.md", "old.md"}, got)
}

func TestBuild_EmptyTagListContributesNothing(t *testing.T) {
	idx, _ := Build([]content.Document{doc("a.md", "A", day(1), nil, "")})
	require.Empty(t, idx.Tags)
}

func TestBuild_SeriesOrderedByExplicitPart_RegardlessOfDiscoveryOrder(t *testing.T) {
	docs := []content.Document{
		doc("three.md", "Skeleton #03", day(1), nil, "skeleton"),
		doc("one.md", "Skeleton #01", day(9), nil, "skeleton"),
		doc("two.md", "Skeleton #02", day(5), nil, "skeleton"),
	}

	idx, warnings := Build(docs)
	require.Empty(t, warnings)
	members := idx.Series["skeleton"]
	require.Equal(t, []string{"one.md", "two.md", "three.md"}, []string{members[0].ID, members[1].ID, members[2].ID})
}

func TestBuild_SeriesFallsBackToTimestampAscending(t *testing.T) {
	docs := []content.Document{
		doc("b.md", "Later", day(7), nil, "notes"),
		doc("a.md", "Earlier", day(2), nil, "notes"),
	}

	idx, _ := Build(docs)
	members := idx.Series["notes"]
	require.Equal(t, "a.md", members[0].ID)
	require.Equal(t, "b.md", members[1].ID)
}

func TestBuild_SingletonSeries_WarnsAndDropsEntry(t *testing.T) {
	docs := []content.Document{
		doc("a.md", "A", day(1), nil, "typo-series"),
		doc("b.md", "B", day(2), nil, ""),
	}

	idx, warnings := Build(docs)
	require.NotContains(t, idx.Series, "typo-series")
	require.Len(t, warnings, 1)
	require.Equal(t, "a.md", warnings[0].DocumentID)
	require.Equal(t, "typo-series", warnings[0].Series)
}

func TestBuild_Deterministic(t *testing.T) {
	docs := []content.Document{
		doc("a.md", "A", day(1), []string{"x", "y"}, "s"),
		doc("b.md", "B", day(2), []string{"y"}, "s"),
	}

	first, _ := Build(docs)
	second, _ := Build(docs)
	require.Equal(t, first, second)
	require.Equal(t, []string{"x", "y"}, first.TagNames())
	require.Equal(t, []string{"s"}, first.SeriesNames())
}

func TestInSeries(t *testing.T) {
	a := doc("a.md", "S #01", day(1), nil, "s")
	b := doc("b.md", "S #02", day(2), nil, "s")
	lone := doc("c.md", "C", day(3), nil, "")

	idx, _ := Build([]content.Document{a, b, lone})

	members, pos, ok := idx.InSeries(b)
	require.True(t, ok)
	require.Equal(t, 1, pos)
	require.Len(t, members, 2)

	_, _, ok = idx.InSeries(lone)
	require.False(t, ok)
}
