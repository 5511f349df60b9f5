package site

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogsmith/internal/logfields"
)

// ErrOutputWrite indicates writing into the output tree failed. Always fatal;
// the staging directory is discarded so the previous site stays intact.
var ErrOutputWrite = errors.New("output write failed")

// buildRoot returns the directory active build stages write into
// (staging if present, else the final output directory).
func (a *Assembler) buildRoot() string {
	if a.stageDir != "" {
		return a.stageDir
	}
	return a.outputDir
}

// beginStaging creates an isolated staging directory for atomic build output.
// Sibling of the output dir (<output>_stage), never inside it.
func (a *Assembler) beginStaging() error {
	stage := a.outputDir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("clear stale staging: %w", err)
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return err
	}
	a.stageDir = stage
	slog.Debug("Initialized staging directory", "staging", stage, "final", a.outputDir)
	return nil
}

// finalizeStaging atomically promotes the staging directory to the final
// output location. Strategy:
//  1. Move existing outputDir (if any) to outputDir.prev.
//  2. Rename staging -> outputDir.
//  3. Remove the previous backup asynchronously, best-effort.
func (a *Assembler) finalizeStaging() error {
	if a.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	if _, err := os.Stat(a.stageDir); err != nil {
		return fmt.Errorf("staging directory missing: %w", err)
	}

	prev := a.outputDir + ".prev"
	if _, err := os.Stat(prev); err == nil {
		if err := os.RemoveAll(prev); err != nil {
			return fmt.Errorf("remove previous backup: %w", err)
		}
	}
	if _, err := os.Stat(a.outputDir); err == nil {
		if err := os.Rename(a.outputDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(a.stageDir, a.outputDir); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	a.stageDir = ""
	if a.cfg.Output.Clean {
		if err := os.RemoveAll(prev); err != nil {
			slog.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
		}
	} else if _, err := os.Stat(prev); err == nil {
		slog.Debug("Keeping previous output backup", logfields.Path(prev))
	}
	slog.Info("Promoted staging directory", logfields.Path(a.outputDir))
	return nil
}

// abortStaging removes any existing staging directory after a failed build
// to avoid orphaned temp dirs. The final output directory is never touched.
func (a *Assembler) abortStaging() {
	if a.stageDir == "" {
		return
	}
	dir := a.stageDir
	a.stageDir = "" // prevent double cleanup
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", "staging", dir, logfields.Error(err))
	} else {
		slog.Debug("Removed staging directory after abort", "staging", dir)
	}
}

// writeArtifact writes one rendered artifact under the build root, creating
// parent directories. The relative path must stay inside the build root.
func (a *Assembler) writeArtifact(relPath string, data []byte) error {
	cleanRel := filepath.Clean(relPath)
	if filepath.IsAbs(cleanRel) || strings.HasPrefix(cleanRel, "..") {
		return fmt.Errorf("%w: artifact path escapes output: %s", ErrOutputWrite, relPath)
	}
	fullPath := filepath.Join(a.buildRoot(), cleanRel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, relPath, err)
	}
	// #nosec G306 -- rendered pages are public content
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, relPath, err)
	}
	return nil
}

// copyStaticAssets mirrors the static directory (sibling of the content
// directory) into the build root when it exists.
func (a *Assembler) copyStaticAssets() error {
	staticDir := filepath.Join(filepath.Dir(filepath.Clean(a.cfg.Content.Directory)), "static")
	fi, err := os.Stat(staticDir)
	if err != nil || !fi.IsDir() {
		return nil // nothing to copy
	}

	return filepath.Walk(staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: static asset %s: %w", ErrOutputWrite, rel, err)
		}
		return a.writeArtifact(rel, data)
	})
}
