package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeSquared-Agency/exportparse/internal/config"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// app carries what every sub-command needs once the root command has run.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "exportparse: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: slog.Default()}
	var logLevel string

	root := &cobra.Command{
		Use:           "exportparse",
		Short:         "Normalize ChatGPT conversation exports into projects and prompt/response entries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			a.cfg = cfg
			a.logger = setupLogging(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides EXPORTPARSE_LOG_LEVEL)")

	root.AddCommand(newNormalizeCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newApplyMapCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newDumpCmd(a))
	return root
}

// setupLogging installs the default logger. The text handler is used on a
// terminal and JSON everywhere else unless format says otherwise.
func setupLogging(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "text" || (format != "json" && isTerminal(w)) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// loadIndex reads the membership map at path. An empty path means no map.
func (a *app) loadIndex(path string) (*projects.Index, *projects.Membership, error) {
	if path == "" {
		return nil, nil, nil
	}
	m, err := projects.LoadMembership(path)
	if err != nil {
		return nil, nil, err
	}
	for _, key := range m.Skipped {
		a.logger.Warn("membership map entry ignored", "project", key)
	}
	ix := projects.BuildIndex(m)
	a.logger.Info("membership map loaded", "path", path, "projects", len(m.Lists), "ids", ix.Len())
	return ix, &m, nil
}

func (a *app) logConflicts(conflicts []projects.Conflict) {
	for _, c := range conflicts {
		a.logger.Warn("conversation listed by several projects",
			"id", c.ID,
			"projects", c.Projects,
			"assigned", c.Assigned,
		)
	}
}
