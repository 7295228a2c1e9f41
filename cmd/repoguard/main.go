package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/repoguard/repoguard/internal/llm"
	"github.com/repoguard/repoguard/internal/output"
	"github.com/repoguard/repoguard/internal/progress"
	"github.com/repoguard/repoguard/internal/report"
	"github.com/repoguard/repoguard/internal/service/analysis"
	"github.com/repoguard/repoguard/pkg/config"
	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/preprocess"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "repoguard",
		Usage:   "Cross-repository code similarity analysis CLI",
		Version: version,
		Description: `Repoguard clones a set of git repositories, normalizes their source
files, and scores every cross-repository file pair with a blend of
token overlap and semantic embedding similarity. Suspicious pairs are
flagged, commit histories are cross-checked, and the result is an N x N
repository similarity matrix with per-pair evidence.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"REPOGUARD_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging",
			},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelWarn
			if c.Bool("verbose") {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			languagesCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"run"},
		Usage:     "Compare repositories for suspicious similarity",
		ArgsUsage: "<repo-url> <repo-url> [repo-url...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Source language to compare (default from config)",
			},
			&cli.StringFlag{
				Name:  "branch",
				Usage: "Branch to clone (default branch when empty)",
			},
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Repository similarity flagging threshold (0.0-1.0; 0 uses the configured default)",
			},
			&cli.BoolFlag{
				Name:  "aggressive",
				Usage: "Anonymize identifiers before comparison",
			},
			&cli.BoolFlag{
				Name:  "no-explain",
				Usage: "Skip LLM explanations for flagged pairs",
			},
			&cli.StringFlag{
				Name:  "embed-model",
				Usage: "Override the embedding model",
			},
			&cli.StringFlag{
				Name:  "text-model",
				Usage: "Override the explanation model",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	repos := c.Args().Slice()
	if len(repos) < 2 {
		return fmt.Errorf("at least 2 repository URLs required (got %d)", c.Args().Len())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := llm.NewClient(ctx, llmOptions(c)...)
	if err != nil {
		return fmt.Errorf("failed to create LLM client (is GEMINI_API_KEY set?): %w", err)
	}

	tracker := progress.NewJobTracker("Analyzing repositories...")
	opts := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithEmbedFunc(client.EmbedFunc()),
		analysis.WithProgress(tracker.SetPercent),
	}
	if !c.Bool("no-explain") {
		opts = append(opts, analysis.WithExplainer(client))
	}
	svc := analysis.New(opts...)

	req := analysis.Request{
		Repos:      repos,
		Branch:     c.String("branch"),
		Language:   c.String("language"),
		Threshold:  c.Float64("threshold"),
		Aggressive: c.Bool("aggressive"),
	}
	j, err := svc.Submit(req)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		j.Cancel()
	}()

	snap := svc.Run(ctx, j, req)
	if snap.Status == models.StatusFailed {
		tracker.FinishError(fmt.Errorf("%s", snap.Error))
		return fmt.Errorf("analysis failed: %s", snap.Error)
	}
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(
		output.ParseFormat(c.String("format")), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.NewView(snap.Result))
}

func llmOptions(c *cli.Context) []llm.Option {
	var opts []llm.Option
	if m := c.String("embed-model"); m != "" {
		opts = append(opts, llm.WithEmbedModel(m))
	}
	if m := c.String("text-model"); m != "" {
		opts = append(opts, llm.WithTextModel(m))
	}
	return opts
}

func languagesCmd() *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "List supported source languages",
		Action: func(c *cli.Context) error {
			fmt.Println(strings.Join(preprocess.Supported(), "\n"))
			return nil
		},
	}
}
