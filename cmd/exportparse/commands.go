package main

import (
	"fmt"

	"github.com/MikeSquared-Agency/exportparse/internal/config"
	"github.com/MikeSquared-Agency/exportparse/internal/export"
	"github.com/MikeSquared-Agency/exportparse/internal/normalize"
	"github.com/MikeSquared-Agency/exportparse/internal/output"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
	"github.com/MikeSquared-Agency/exportparse/internal/validate"
	"github.com/spf13/cobra"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var (
		mapPath  string
		outDir   string
		format   string
		sinceStr string
		untilStr string
	)

	cmd := &cobra.Command{
		Use:   "normalize <conversations.json>",
		Short: "Pair prompts with responses and group conversations by project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("map") {
				mapPath = a.cfg.ProjectMap
			}
			if !flags.Changed("out") {
				outDir = a.cfg.OutputDir
			}
			if !flags.Changed("format") {
				format = a.cfg.OutputFormat
			}

			since, err := normalize.ParseBound(sinceStr, false)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			until, err := normalize.ParseBound(untilStr, true)
			if err != nil {
				return fmt.Errorf("invalid --until value: %w", err)
			}

			r := normalize.NewRunner(normalize.Config{
				ExportPath: args[0],
				MapPath:    mapPath,
				OutputDir:  outDir,
				Format:     format,
				Since:      since,
				Until:      until,
			}, a.logger, cmd.OutOrStdout())

			_, err = r.Run(cmd.Context())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&mapPath, "map", "", "project membership map (JSON or YAML); defaults to EXPORTPARSE_PROJECT_MAP")
	flags.StringVarP(&outDir, "out", "o", "", "output directory; defaults to EXPORTPARSE_OUTPUT_DIR")
	flags.StringVar(&format, "format", "", "output format: json, jsonl or both; defaults to EXPORTPARSE_OUTPUT_FORMAT")
	flags.StringVar(&sinceStr, "since", "", "keep conversations updated on/after this date (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&untilStr, "until", "", "keep conversations updated on/before this date (YYYY-MM-DD means end of day)")

	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var mapPath string

	cmd := &cobra.Command{
		Use:   "validate <conversations.json>",
		Short: "Check every record of an export and report all violations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rep := validate.Records(recs)
			for _, is := range rep.Issues {
				if is.ID != "" {
					fmt.Fprintf(out, "record %d (%s): %s: %s\n", is.Index, is.ID, is.Field, is.Message)
				} else {
					fmt.Fprintf(out, "record %d: %s: %s\n", is.Index, is.Field, is.Message)
				}
			}

			var cc validate.CrossCheck
			if mapPath != "" {
				_, m, err := a.loadIndex(mapPath)
				if err != nil {
					return err
				}
				cc = validate.CheckMembership(recs, *m)
				for _, id := range cc.Missing {
					fmt.Fprintf(out, "map id %s: not in export\n", id)
				}
				for _, mm := range cc.Mismatches {
					actual := mm.Actual
					if actual == "" {
						actual = "untagged"
					}
					fmt.Fprintf(out, "map id %s: expected project %q, found %s\n", mm.ID, mm.Expected, actual)
				}
			}

			fmt.Fprintf(out, "\n=== Validation Summary ===\n")
			fmt.Fprintf(out, "Records: %d\n", rep.Records)
			fmt.Fprintf(out, "Invalid records: %d\n", rep.Invalid)
			fmt.Fprintf(out, "Issues: %d\n", len(rep.Issues))
			fmt.Fprintf(out, "With project: %d\n", rep.WithProject)
			fmt.Fprintf(out, "Without project: %d\n", rep.WithoutProject)
			if mapPath != "" {
				fmt.Fprintf(out, "Map ids missing: %d\n", len(cc.Missing))
				fmt.Fprintf(out, "Map mismatches: %d\n", len(cc.Mismatches))
			}

			if !rep.OK() || !cc.OK() {
				return fmt.Errorf("validation failed: %d invalid records, %d map problems", rep.Invalid, len(cc.Missing)+len(cc.Mismatches))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mapPath, "map", "", "also check the export against this project membership map")
	return cmd
}

func newApplyMapCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "apply-map <conversations.json> [project-map.json]",
		Short: "Write a copy of the export with project tags taken from a membership map",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapPath := a.cfg.ProjectMap
			if len(args) == 2 {
				mapPath = args[1]
			}
			if mapPath == "" {
				return fmt.Errorf("no membership map: pass one or set %s_PROJECT_MAP", config.Prefix)
			}

			recs, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}
			ix, _, err := a.loadIndex(mapPath)
			if err != nil {
				return err
			}

			data, stats, err := projects.RewriteTags(recs, ix)
			if err != nil {
				return err
			}
			if err := output.WriteFile(outPath, data); err != nil {
				return err
			}

			conflicts := ix.Conflicts()
			a.logConflicts(conflicts)
			a.logger.Info("membership map applied", "output", outPath, "records", len(recs), "tagged", stats.Tagged)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n=== Apply Map Summary ===\n")
			fmt.Fprintf(out, "Records: %d\n", len(recs))
			fmt.Fprintf(out, "Tagged from map: %d\n", stats.Tagged)
			fmt.Fprintf(out, "Already tagged: %d\n", stats.Kept)
			fmt.Fprintf(out, "No project: %d\n", stats.Untagged)
			fmt.Fprintf(out, "Left unchanged: %d\n", stats.Unchanged)
			fmt.Fprintf(out, "Conflicting ids: %d\n", len(conflicts))
			fmt.Fprintf(out, "Output: %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "conversations-with-projects.json", "output file")
	return cmd
}
