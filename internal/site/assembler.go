package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/content"
	cerrors "git.home.luguber.info/inful/blogsmith/internal/content/errors"
	"git.home.luguber.info/inful/blogsmith/internal/logfields"
	"git.home.luguber.info/inful/blogsmith/internal/metrics"
	"git.home.luguber.info/inful/blogsmith/internal/render"
	"git.home.luguber.info/inful/blogsmith/internal/taxonomy"
)

// Assembler orchestrates loader, indexer, and renderer into a deterministic
// output tree. One Assembler performs one build.
type Assembler struct {
	cfg           *config.Config
	outputDir     string // final output dir
	stageDir      string // ephemeral staging dir for current build
	includeDrafts bool
	renderer      *render.Renderer
	recorder      metrics.Recorder
}

// NewAssembler creates an assembler writing to outputDir. Pass includeDrafts
// for preview builds; production builds exclude drafts entirely.
func NewAssembler(cfg *config.Config, outputDir string, includeDrafts bool) (*Assembler, error) {
	renderer, err := render.NewRenderer(cfg)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		cfg:           cfg,
		outputDir:     filepath.Clean(outputDir),
		includeDrafts: includeDrafts,
		renderer:      renderer,
		recorder:      metrics.NoopRecorder{},
	}, nil
}

// SetRecorder injects a metrics recorder (optional). Returns the assembler for chaining.
func (a *Assembler) SetRecorder(r metrics.Recorder) *Assembler {
	if r == nil {
		a.recorder = metrics.NoopRecorder{}
		return a
	}
	a.recorder = r
	return a
}

// OutputDir returns the final output directory path.
func (a *Assembler) OutputDir() string { return a.outputDir }

// Build runs the full pipeline, honoring ctx for cancellation. On success the
// staging directory is atomically promoted over the output directory; on any
// fatal error the staging directory is discarded and the previous output is
// left untouched.
func (a *Assembler) Build(ctx context.Context) (*BuildReport, error) {
	slog.Info("Starting site build",
		logfields.Path(a.outputDir),
		slog.Bool("include_drafts", a.includeDrafts))

	if err := a.beginStaging(); err != nil {
		return nil, err
	}

	report := newBuildReport()
	bs := newBuildState(a, report)

	stages := []StageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageLoadContent, stageLoadContent},
		{StageBuildIndexes, stageBuildIndexes},
		{StageRenderDocuments, stageRenderDocuments},
		{StageRenderLists, stageRenderLists},
		{StageRenderFeeds, stageRenderFeeds},
		{StagePostProcess, stagePostProcess},
	}

	if err := runStages(ctx, bs, stages); err != nil {
		report.finish()
		var se *StageError
		if errors.As(err, &se) && se.Kind == StageErrorCanceled {
			report.Outcome = OutcomeCanceled
		}
		a.abortStaging()
		a.emitBuildMetrics(report)
		return report, err
	}

	report.finish()
	// Persist report (best effort) inside the staged output before promotion.
	if err := report.Persist(a.buildRoot()); err != nil {
		slog.Warn("Failed to persist build report", logfields.Error(err))
	}
	if err := a.finalizeStaging(); err != nil {
		a.abortStaging()
		return report, fmt.Errorf("finalize staging: %w", err)
	}

	a.emitBuildMetrics(report)
	slog.Info("Site build completed",
		logfields.Path(a.outputDir),
		slog.Int("documents", report.Documents),
		slog.Int("pages", report.PagesRendered),
		slog.Int("warnings", len(report.Warnings)))
	return report, nil
}

func (a *Assembler) emitBuildMetrics(report *BuildReport) {
	a.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	a.recorder.IncBuildOutcome(string(report.Outcome))
	a.recorder.SetDocumentsLoaded(report.Documents)
	a.recorder.SetPagesRendered(report.PagesRendered)
}

// stagePrepareOutput creates the top-level output directories.
func stagePrepareOutput(_ context.Context, _ *BuildState) error {
	// Directories for individual artifacts are created on write; nothing to
	// pre-create beyond the staging root, which beginStaging already made.
	return nil
}

// stageLoadContent discovers and parses all documents, then derives the
// visible (production) set in home ordering.
func stageLoadContent(_ context.Context, bs *BuildState) error {
	loader := content.NewLoader(bs.Assembler.cfg.Content.Directory)
	docs, err := loader.Load()
	if err != nil {
		return newFatalStageError(StageLoadContent, err)
	}
	bs.Docs = docs

	visible := make([]content.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Draft() && !bs.Assembler.includeDrafts {
			bs.Report.DraftsExcluded++
			slog.Debug("Excluding draft from production output", logfields.Document(doc.ID))
			continue
		}
		// Future-dated documents stay out of production until a rebuild
		// happens after their timestamp; preview shows them like drafts.
		if doc.Date.After(bs.start) && !bs.Assembler.includeDrafts {
			bs.Report.FutureExcluded++
			slog.Debug("Excluding future-dated document from production output",
				logfields.Document(doc.ID))
			continue
		}
		visible = append(visible, doc)
	}
	// Home ordering: publication timestamp descending, stable on ID.
	sort.SliceStable(visible, func(i, j int) bool {
		if !visible[i].Date.Equal(visible[j].Date) {
			return visible[i].Date.After(visible[j].Date)
		}
		return visible[i].ID < visible[j].ID
	})
	bs.Visible = visible
	bs.Report.Documents = len(visible)
	return nil
}

// stageBuildIndexes derives tag and series indices from the visible set.
func stageBuildIndexes(_ context.Context, bs *BuildState) error {
	idx, warnings := taxonomy.Build(bs.Visible)
	bs.Index = idx
	if len(warnings) == 0 {
		return nil
	}
	for _, w := range warnings {
		slog.Warn("Document references an undefined series; rendering without series navigation",
			logfields.Document(w.DocumentID),
			logfields.Series(w.Series))
		bs.Report.AddWarning(fmt.Sprintf("%s: %s (series %q)", w.DocumentID, cerrors.ErrMissingSeriesReference, w.Series))
	}
	return newWarnStageError(StageBuildIndexes, fmt.Errorf("%w: %d document(s)", cerrors.ErrMissingSeriesReference, len(warnings)))
}

// stageRenderDocuments renders every visible document page. Rendering is
// pure per document, so pages fan out across a small worker pool; writes
// happen on the collecting side after the join.
func stageRenderDocuments(ctx context.Context, bs *BuildState) error {
	a := bs.Assembler
	if !a.cfg.HasOutput(config.OutputHTML) {
		slog.Debug("HTML output disabled; skipping document pages")
		return nil
	}
	docs := bs.Visible

	type rendered struct {
		path string
		data []byte
		err  error
	}
	out := make([]rendered, len(docs))

	workers := runtime.NumCPU()
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				data, err := a.renderer.Document(docs[i], bs.Index)
				out[i] = rendered{path: render.DocumentPath(docs[i]), data: data, err: err}
			}
		}()
	}
	for i := range docs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return newCanceledStageError(StageRenderDocuments, ctx.Err())
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for i, r := range out {
		if r.err != nil {
			return newFatalStageError(StageRenderDocuments, fmt.Errorf("document %s: %w", docs[i].ID, r.err))
		}
		if err := a.writeArtifact(r.path, r.data); err != nil {
			return newFatalStageError(StageRenderDocuments, err)
		}
		bs.Report.PagesRendered++
	}
	return nil
}

// stageRenderLists renders the home pages, taxonomy term pages, taxonomy
// overviews, and the archive.
func stageRenderLists(_ context.Context, bs *BuildState) error {
	a := bs.Assembler
	if !a.cfg.HasOutput(config.OutputHTML) {
		slog.Debug("HTML output disabled; skipping listing pages")
		return nil
	}

	pages := render.Paginate(bs.Visible, a.cfg.Pagination.PageSize)
	for n := 1; n <= len(pages); n++ {
		data, err := a.renderer.HomePage(bs.Visible, n)
		if err != nil {
			return newFatalStageError(StageRenderLists, err)
		}
		if err := a.writeArtifact(render.HomePath(n), data); err != nil {
			return newFatalStageError(StageRenderLists, err)
		}
		bs.Report.PagesRendered++
	}

	for _, tag := range bs.Index.TagNames() {
		data, err := a.renderer.TagPage(tag, bs.Index.Tags[tag])
		if err != nil {
			return newFatalStageError(StageRenderLists, err)
		}
		if err := a.writeArtifact(render.TagPath(tag), data); err != nil {
			return newFatalStageError(StageRenderLists, err)
		}
		bs.Report.PagesRendered++
	}
	for _, series := range bs.Index.SeriesNames() {
		data, err := a.renderer.SeriesPage(series, bs.Index.Series[series])
		if err != nil {
			return newFatalStageError(StageRenderLists, err)
		}
		if err := a.writeArtifact(render.SeriesPath(series), data); err != nil {
			return newFatalStageError(StageRenderLists, err)
		}
		bs.Report.PagesRendered++
	}

	overviews := []struct {
		path   string
		render func() ([]byte, error)
	}{
		{render.TagsIndexPath, func() ([]byte, error) { return a.renderer.TagsIndex(bs.Index) }},
		{render.SeriesIndexPath, func() ([]byte, error) { return a.renderer.SeriesIndex(bs.Index) }},
		{render.ArchivePath, func() ([]byte, error) { return a.renderer.ArchivePage(bs.Visible) }},
	}
	for _, o := range overviews {
		data, err := o.render()
		if err != nil {
			return newFatalStageError(StageRenderLists, err)
		}
		if err := a.writeArtifact(o.path, data); err != nil {
			return newFatalStageError(StageRenderLists, err)
		}
		bs.Report.PagesRendered++
	}
	return nil
}

// stageRenderFeeds writes the machine-readable feeds for enabled formats.
func stageRenderFeeds(_ context.Context, bs *BuildState) error {
	a := bs.Assembler

	if a.cfg.HasOutput(config.OutputRSS) {
		data, err := a.renderer.RSS(bs.Visible)
		if err != nil {
			return newFatalStageError(StageRenderFeeds, err)
		}
		if err := a.writeArtifact(render.RSSPath, data); err != nil {
			return newFatalStageError(StageRenderFeeds, err)
		}
		bs.Report.FeedsWritten++
		slog.Debug("Wrote feed", logfields.Format("rss"), logfields.Path(render.RSSPath))
	}
	if a.cfg.HasOutput(config.OutputJSON) {
		data, err := a.renderer.JSONFeed(bs.Visible)
		if err != nil {
			return newFatalStageError(StageRenderFeeds, err)
		}
		if err := a.writeArtifact(render.JSONFeedPath, data); err != nil {
			return newFatalStageError(StageRenderFeeds, err)
		}
		bs.Report.FeedsWritten++
		slog.Debug("Wrote feed", logfields.Format("json"), logfields.Path(render.JSONFeedPath))
	}
	return nil
}

// stagePostProcess mirrors static assets into the output tree.
func stagePostProcess(_ context.Context, bs *BuildState) error {
	if err := bs.Assembler.copyStaticAssets(); err != nil {
		return newFatalStageError(StagePostProcess, err)
	}
	return nil
}
