package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/frontmatter"
	"git.home.luguber.info/inful/blogsmith/internal/preview"
	"git.home.luguber.info/inful/blogsmith/internal/site"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output        string `short:"o" help:"Output directory for the generated site (overrides config)"`
		IncludeDrafts bool   `short:"D" help:"Render draft documents"`
	} `cmd:"" help:"Build the site from the content directory"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	New struct {
		Title  string   `arg:"" help:"Title of the new document"`
		Series string   `short:"s" help:"Series the document belongs to"`
		Tags   []string `short:"t" help:"Tags for the document"`
	} `cmd:"" help:"Create a new draft document skeleton"`

	Serve struct {
		Port         int           `short:"p" help:"HTTP port for the preview server" default:"1313"`
		Watch        bool          `short:"w" help:"Rebuild when content changes" default:"true" negatable:""`
		RebuildEvery time.Duration `help:"Also rebuild on a fixed interval (0 disables)"`
	} `cmd:"" help:"Serve a local preview with drafts and live rebuilds"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runBuild(cfg, CLI.Build.Output, CLI.Build.IncludeDrafts); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "new <title>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runNew(cfg, CLI.New.Title, CLI.New.Series, CLI.New.Tags); err != nil {
			slog.Error("New document failed", "error", err)
			os.Exit(1)
		}
	case "serve":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runServe(cfg, CLI.Serve.Port, CLI.Serve.Watch, CLI.Serve.RebuildEvery); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	}
}

func runBuild(cfg *config.Config, outputDir string, includeDrafts bool) error {
	if outputDir == "" {
		outputDir = cfg.Output.Directory
	}

	assembler, err := site.NewAssembler(cfg, outputDir, includeDrafts)
	if err != nil {
		return err
	}
	report, err := assembler.Build(context.Background())
	if err != nil {
		return err
	}

	slog.Info("Build finished",
		"outcome", string(report.Outcome),
		"documents", report.Documents,
		"pages", report.PagesRendered,
		"feeds", report.FeedsWritten,
		"duration", report.End.Sub(report.Start).Round(time.Millisecond).String())
	for _, w := range report.Warnings {
		slog.Warn("Build warning", "warning", w)
	}
	return nil
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	if err := config.Init(configPath, force); err != nil {
		return err
	}

	// Seed a starter post so the first build produces a visible site.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	starter := filepath.Join(cfg.Content.Directory, "posts", "welcome.md")
	if _, err := os.Stat(starter); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(starter), 0o750); err != nil {
		return err
	}
	fm, err := frontmatter.Encode(frontmatter.Fields{
		Title: "Welcome",
		Date:  time.Now().Format("2006-01-02"),
		Tags:  []string{"meta"},
	})
	if err != nil {
		return err
	}
	doc := frontmatter.Join(fm, []byte("Your site works. Replace this post with your own writing.\n"), true, frontmatter.Style{
		Newline:            "\n",
		HasTrailingNewline: true,
	})
	if err := os.WriteFile(starter, doc, 0o644); err != nil {
		return err
	}
	slog.Info("Created starter content", "path", starter)
	return nil
}

// runNew writes a draft skeleton under the content directory and prints its path.
func runNew(cfg *config.Config, title, series string, tags []string) error {
	slug := content.Slugify(title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", title)
	}

	fm, err := frontmatter.Encode(frontmatter.Fields{
		Title:  title,
		Date:   time.Now().Format("2006-01-02T15:04:05Z07:00"),
		Draft:  true,
		Tags:   tags,
		Series: series,
	})
	if err != nil {
		return err
	}
	doc := frontmatter.Join(fm, []byte("Write something worth reading.\n"), true, frontmatter.Style{
		Newline:            "\n",
		HasTrailingNewline: true,
	})

	path := filepath.Join(cfg.Content.Directory, "posts", slug+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("document already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return err
	}

	slog.Info("Created draft document", "path", path, "slug", slug)
	fmt.Println(path)
	return nil
}

func runServe(cfg *config.Config, port int, watch bool, rebuildEvery time.Duration) error {
	// Preview output goes to a temp directory so local serving never
	// clobbers a production build tree.
	tempOutput, err := os.MkdirTemp("", "blogsmith-preview-*")
	if err != nil {
		return fmt.Errorf("create preview output dir: %w", err)
	}
	outputDir := filepath.Join(tempOutput, "site")
	defer func() {
		if rmErr := os.RemoveAll(tempOutput); rmErr != nil {
			slog.Warn("Failed to remove preview output", "dir", tempOutput, "error", rmErr)
		}
	}()

	srv, err := preview.NewServer(cfg, outputDir, preview.Options{
		Port:         port,
		Watch:        watch,
		RebuildEvery: rebuildEvery,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
