package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/standardbeagle/perfguard/internal/classifier"
	"github.com/standardbeagle/perfguard/internal/config"
	"github.com/standardbeagle/perfguard/internal/metricsclient"
	"github.com/standardbeagle/perfguard/internal/model"
	"github.com/standardbeagle/perfguard/internal/modelclient"
	"github.com/standardbeagle/perfguard/internal/pipeline"
	"github.com/standardbeagle/perfguard/internal/regenerator"
	"github.com/standardbeagle/perfguard/internal/repoclient"
	"github.com/standardbeagle/perfguard/internal/scheduler"
	"github.com/standardbeagle/perfguard/internal/techtable"
	"github.com/standardbeagle/perfguard/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "perfguard",
		Usage:                  "closed-loop performance remediation for deployed web applications",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			setupCommand(),
			startCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "perfguard: %v\n", err)
		os.Exit(1)
	}
}

// setupCommand implements the `setup` CLI operation of §6: persist the
// fixed config.yaml from the flags given.
func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "write the configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tenant", Required: true, Usage: "Instana tenant"},
			&cli.StringFlag{Name: "unit", Required: true, Usage: "Instana unit"},
			&cli.StringFlag{Name: "api", Required: true, Usage: "Instana API key including its \"apiToken \" prefix (sent verbatim as the Authorization header)"},
			&cli.StringFlag{Name: "label", Required: true, Usage: "Instana application label"},
			&cli.StringFlag{Name: "pat", Required: true, Usage: "GitHub personal access token"},
			&cli.StringFlag{Name: "repo", Required: true, Usage: "target repository name"},
			&cli.StringFlag{Name: "branch", Value: "main", Usage: "default branch"},
			&cli.StringFlag{Name: "model", Value: "codellama", Usage: "Ollama model name"},
			&cli.StringFlag{Name: "ollama", Value: "http://localhost:11434", Usage: "Ollama base URL"},
		},
		Action: func(c *cli.Context) error {
			cfg := &config.Config{
				IBMTenant:  c.String("tenant"),
				IBMUnit:    c.String("unit"),
				IBMKey:     c.String("api"),
				IBMLabel:   c.String("label"),
				GitHub:     c.String("pat"),
				Repository: c.String("repo"),
				Branch:     c.String("branch"),
				Model:      c.String("model"),
				ModelPath:  c.String("ollama"),
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path, err := config.Path()
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}

// startCommand implements the `start` CLI operation of §6: validate
// the configuration, construct every client, and enter the scheduler
// loop until a termination signal arrives.
func startCommand() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "run the remediation scheduler",
		ArgsUsage: "[threshold] [delay]",
		Action: func(c *cli.Context) error {
			thresholdMs := 500.0
			if c.Args().Len() > 0 {
				var v float64
				if _, err := fmt.Sscanf(c.Args().Get(0), "%f", &v); err != nil {
					return fmt.Errorf("invalid threshold %q: %w", c.Args().Get(0), err)
				}
				thresholdMs = v
			}

			delayMinutes := 10
			if c.Args().Len() > 1 {
				var v int
				if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &v); err != nil {
					return fmt.Errorf("invalid delay %q: %w", c.Args().Get(1), err)
				}
				delayMinutes = v
			}

			logger, err := zap.NewProduction()
			if err != nil {
				logger = zap.NewNop()
			}
			defer logger.Sync() //nolint:errcheck

			return run(thresholdMs, time.Duration(delayMinutes)*time.Minute, logger)
		},
	}
}

func run(thresholdMs float64, tickInterval time.Duration, logger *zap.Logger) error {
	configPath, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	promptPath, err := config.PromptPath()
	if err != nil {
		return err
	}
	prompts, err := config.LoadPrompt(promptPath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	metrics := metricsclient.New(cfg.IBMTenant, cfg.IBMUnit, cfg.IBMKey, tickInterval, techtable.Technologies())

	repo, err := repoclient.New(ctx, cfg.GitHub, cfg.Repository)
	if err != nil {
		return err
	}

	modelConn := modelclient.New(cfg.ModelPath, cfg.Model)

	// The binary learned classifier requires an external, separately
	// trained model artifact that is out of scope (§1); the
	// generative-model backend is already configured here, so the
	// prompt classifier is the classifier this CLI wires by default.
	promptClassifier := classifier.NewPromptClassifier(modelConn, prompts)

	regen := regenerator.New(modelConn, prompts, regenerator.DefaultMaxRuns)
	runner := pipeline.New(regen, cfg.Model, false, logger)

	rc := &model.RunContext{
		Metrics:      metrics,
		Repo:         repo,
		ModelConn:    modelConn,
		Classifier:   promptClassifier,
		ThresholdMs:  thresholdMs,
		TickInterval: tickInterval,
	}

	sched := scheduler.New(runner, rc, tickInterval, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	sched.Run(runCtx)
	return nil
}
