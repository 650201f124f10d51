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
	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebake/internal/linkcheck"
	"git.home.luguber.info/inful/sitebake/internal/manifest"
	"git.home.luguber.info/inful/sitebake/internal/site"
	"git.home.luguber.info/inful/sitebake/internal/version"
	"git.home.luguber.info/inful/sitebake/internal/watch"
)

var CLI struct {
	Manifest string           `short:"m" help:"Site manifest path" default:"sitebake.yaml"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `help:"Print version and exit"`

	Build struct {
		Output     string `short:"o" help:"Override the manifest's output directory"`
		CheckLinks bool   `help:"Verify internal links before writing output"`
	} `cmd:"" help:"Render the site to the output directory"`

	Check struct{} `cmd:"" help:"Render the site in memory and verify internal links"`

	Init struct {
		Force bool `help:"Overwrite an existing manifest"`
	} `cmd:"" help:"Write a starter site manifest"`

	Watch struct {
		Output   string        `short:"o" help:"Override the manifest's output directory"`
		Debounce time.Duration `help:"Quiet period before rebuilding" default:"500ms"`
	} `cmd:"" help:"Rebuild whenever the manifest or content changes"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{"version": version.Version})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		if err := runBuild(CLI.Manifest, CLI.Build.Output, CLI.Build.CheckLinks); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "check":
		broken, err := runCheck(CLI.Manifest)
		if err != nil {
			slog.Error("Check failed", "error", err)
			os.Exit(1)
		}
		if len(broken) > 0 {
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Manifest, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		if err := runWatch(CLI.Manifest, CLI.Watch.Output, CLI.Watch.Debounce); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	}
}

func runBuild(manifestPath, outputOverride string, checkLinks bool) error {
	buildID := uuid.NewString()
	log := slog.With("build_id", buildID)

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(manifestPath)

	if checkLinks {
		broken, err := verifyLinks(m, baseDir, log)
		if err != nil {
			return err
		}
		if len(broken) > 0 {
			return fmt.Errorf("%d broken internal links", len(broken))
		}
	}

	log.Info("Rendering site", "manifest", manifestPath, "output", outputValue(m.Output, outputOverride))
	if err := site.Render(m, baseDir, outputOverride); err != nil {
		return err
	}
	log.Info("Site rendered")
	return nil
}

func runCheck(manifestPath string) ([]linkcheck.BrokenLink, error) {
	log := slog.With("build_id", uuid.NewString())

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	return verifyLinks(m, filepath.Dir(manifestPath), log)
}

func verifyLinks(m *manifest.Manifest, baseDir string, log *slog.Logger) ([]linkcheck.BrokenLink, error) {
	out, err := site.RenderToMap(m, baseDir)
	if err != nil {
		return nil, err
	}
	broken, err := linkcheck.Check(out)
	if err != nil {
		return nil, err
	}
	for _, link := range broken {
		log.Warn("Broken internal link", "page", link.Page, "target", link.Target)
	}
	if len(broken) == 0 {
		log.Info("All internal links resolve", "pages", len(out.Pages))
	}
	return broken, nil
}

func runInit(manifestPath string, force bool) error {
	if _, err := os.Stat(manifestPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(manifest.Starter), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	slog.Info("Wrote starter manifest", "path", manifestPath)
	return nil
}

func runWatch(manifestPath, outputOverride string, debounce time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(manifestPath)

	rebuild := func() {
		// Reload so manifest edits take effect on the next build.
		if err := runBuild(manifestPath, outputOverride, false); err != nil {
			slog.Error("Rebuild failed", "error", err)
		}
	}
	rebuild()

	contentDir := m.Content
	if !filepath.IsAbs(contentDir) {
		contentDir = filepath.Join(baseDir, contentDir)
	}

	slog.Info("Watching for changes", "manifest", manifestPath, "content", contentDir)
	return watch.Run(ctx, []string{manifestPath, contentDir}, debounce, rebuild)
}

func outputValue(manifestOutput, override string) string {
	if override != "" {
		return override
	}
	return manifestOutput
}
