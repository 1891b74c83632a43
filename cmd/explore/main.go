package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"wordvec/internal/app"
	"wordvec/internal/domain"
	"wordvec/internal/service"
	"wordvec/internal/session"
	"wordvec/internal/tui"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/wordvec/config.yaml if not provided)")
	flag.Parse()

	env, err := app.Bootstrap(cfgPath)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer func() { _ = env.Log.Sync() }()

	// ctrl+c ends the session the same way exit does
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	stopMetrics := env.ServeMetrics()
	defer stopMetrics()

	if err := run(ctx, env); err != nil {
		if errors.Is(err, domain.ErrModelNotFound) {
			fmt.Fprintln(os.Stderr, "Model not found. Please run train first.")
		}
		env.Log.Error("explore failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, env *app.Env) error {
	cfg := env.Config.Session
	model, closeStore, err := env.LoadModel(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	words := service.NewWordService(model,
		service.WithMetrics(env.Metrics),
		service.WithPlot(cfg.PlotPath, cfg.PlotNeighbors),
	)
	s := session.New(words, cfg.TopK)

	if useTUI(cfg.UI) {
		summary := fmt.Sprintf("Vocabulary: %s words, %d dimensions", humanize.Comma(int64(len(model.Words()))), model.Dimension())
		_, err := tea.NewProgram(tui.New(s, summary), tea.WithContext(ctx)).Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}

	fmt.Println(session.Help)
	return s.Run(ctx, os.Stdin, os.Stdout)
}

func useTUI(mode string) bool {
	switch mode {
	case "tui":
		return true
	case "line":
		return false
	default:
		return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	}
}
