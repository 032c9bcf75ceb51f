package normalize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
	"github.com/MikeSquared-Agency/exportparse/internal/output"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
	"github.com/google/uuid"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatLines = "jsonl"
	FormatBoth  = "both"
)

// Base name of the files a run writes.
const outputBase = "structured-chatgpt"

// Config holds the normalize command configuration.
type Config struct {
	ExportPath string
	MapPath    string // optional membership map
	OutputDir  string
	Format     string // json, jsonl or both
	Since      time.Time
	Until      time.Time
}

// Runner reads an export, normalizes it and writes the output documents.
type Runner struct {
	cfg    Config
	logger *slog.Logger
	out    io.Writer
	now    func() time.Time
}

// NewRunner creates a normalize runner. The console summary goes to out.
func NewRunner(cfg Config, logger *slog.Logger, out io.Writer) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logger,
		out:    out,
		now:    time.Now,
	}
}

// Run executes one normalize pass. Nothing is written unless the whole export
// was read and processed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	recs, err := export.ReadFile(r.cfg.ExportPath)
	if err != nil {
		return nil, err
	}
	r.logger.Info("export loaded", "path", r.cfg.ExportPath, "records", len(recs))

	var ix *projects.Index
	if r.cfg.MapPath != "" {
		m, err := projects.LoadMembership(r.cfg.MapPath)
		if err != nil {
			return nil, err
		}
		for _, key := range m.Skipped {
			r.logger.Warn("membership map entry ignored", "project", key)
		}
		ix = projects.BuildIndex(m)
		r.logger.Info("membership map loaded", "path", r.cfg.MapPath, "projects", len(m.Lists), "ids", ix.Len())
	}

	runID := uuid.New().String()
	res, err := Process(ctx, recs, ix, Options{
		Since: r.cfg.Since,
		Until: r.cfg.Until,
		RunID: runID,
		Now:   r.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("process export: %w", err)
	}

	for _, sk := range res.Skipped {
		r.logger.Warn("record skipped", "index", sk.Index, "reason", sk.Reason)
	}
	for _, is := range res.Issues {
		r.logger.Debug("record issue", "index", is.Index, "id", is.ID, "field", is.Field, "error", is.Message)
	}
	for _, c := range res.Conflicts {
		r.logger.Warn("conversation listed by several projects",
			"id", c.ID,
			"projects", c.Projects,
			"assigned", c.Assigned,
		)
	}

	paths, err := r.write(res.Document)
	if err != nil {
		return nil, err
	}

	r.logger.Info("normalize complete", append([]any{"run_id", runID}, res.Summary.Attrs()...)...)
	if r.out != nil {
		fmt.Fprint(r.out, FormatSummary(res.Summary, paths))
	}
	return res, nil
}

// write encodes every requested format before touching the disk, so an
// encoding failure leaves no partial output behind.
func (r *Runner) write(doc output.Document) ([]string, error) {
	var files []output.File

	base := filepath.Join(r.cfg.OutputDir, outputBase)
	if r.cfg.Format == FormatJSON || r.cfg.Format == FormatBoth || r.cfg.Format == "" {
		data, err := output.EncodeJSON(doc)
		if err != nil {
			return nil, err
		}
		files = append(files, output.File{Path: base + ".json", Data: data})
	}
	if r.cfg.Format == FormatLines || r.cfg.Format == FormatBoth {
		data, err := output.EncodeLines(doc)
		if err != nil {
			return nil, err
		}
		files = append(files, output.File{Path: base + ".jsonl", Data: data})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("unknown output format %q", r.cfg.Format)
	}

	if err := output.WriteFiles(files); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		r.logger.Info("output written", "path", f.Path, "bytes", len(f.Data))
		paths = append(paths, f.Path)
	}
	return paths, nil
}
