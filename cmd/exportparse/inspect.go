package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
	"github.com/MikeSquared-Agency/exportparse/internal/pairing"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newListCmd(a *app) *cobra.Command {
	var mapPath string

	cmd := &cobra.Command{
		Use:   "list <conversations.json>",
		Short: "List conversations grouped by project, most recently updated first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("map") {
				mapPath = a.cfg.ProjectMap
			}

			recs, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}
			ix, _, err := a.loadIndex(mapPath)
			if err != nil {
				return err
			}

			convs := make([]export.Conversation, 0, len(recs))
			for _, rec := range recs {
				c, err := export.Decode(rec)
				if err != nil {
					a.logger.Warn("record skipped", "index", rec.Index, "error", err)
					continue
				}
				convs = append(convs, c)
			}
			projects.Apply(convs, ix)
			a.logConflicts(ix.Conflicts())

			out := cmd.OutOrStdout()
			for _, p := range projects.Group(convs) {
				fmt.Fprintf(out, "\n=== %s (%s) — %d chats ===\n", p.Name, p.ID, len(p.Chats))
				for _, c := range p.Chats {
					fmt.Fprintf(out, "- %s  [%s]\n", c.Title, c.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mapPath, "map", "", "project membership map; defaults to EXPORTPARSE_PROJECT_MAP")
	return cmd
}

func newDumpCmd(a *app) *cobra.Command {
	var (
		width int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "dump <conversations.json> <conversation-id | chat-url>",
		Short: "Print the ordered messages of one conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := conversationID(args[1])
			if id == "" {
				return fmt.Errorf("no conversation id in %q", args[1])
			}

			recs, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}
			conv, ok := findConversation(recs, id)
			if !ok {
				return fmt.Errorf("conversation %s not found", id)
			}

			var msgs []export.Message
			if all {
				msgs = conv.Messages
				if conv.Encoding == export.EncodingMapping {
					msgs = pairing.SortStable(msgs)
				}
			} else {
				msgs, _ = pairing.Sequence(conv)
			}

			out := cmd.OutOrStdout()
			w := previewWidth(out, width, a.cfg.PreviewWidth)

			project := "none"
			if conv.Project != nil {
				project = fmt.Sprintf("%s (%s)", conv.Project.Name, conv.Project.ID)
			}
			fmt.Fprintf(out, "Conversation: %s\n", conv.ID)
			fmt.Fprintf(out, "Title: %s\n", conv.Title)
			fmt.Fprintf(out, "Encoding: %s\n", conv.Encoding)
			fmt.Fprintf(out, "Project: %s\n", project)
			fmt.Fprintf(out, "Created: %s\n", orUnknown(export.FormatInstant(conv.Created)))
			fmt.Fprintf(out, "Updated: %s\n", orUnknown(export.FormatInstant(conv.Updated)))
			fmt.Fprintf(out, "Messages: %d of %d\n", len(msgs), len(conv.Messages))

			for _, m := range msgs {
				fmt.Fprintf(out, "\n[%s] %s\n", m.Role, clip(m.Text, w))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&width, "width", 0, "characters of each message to show (0: terminal width, else EXPORTPARSE_PREVIEW_WIDTH)")
	flags.BoolVar(&all, "all", false, "show every message, including other roles and blank text")
	return cmd
}

// conversationID accepts a bare id or a chat URL such as
// https://chatgpt.com/c/<id>?model=x.
func conversationID(arg string) string {
	arg = strings.TrimSpace(arg)
	_, after, found := strings.Cut(arg, "/c/")
	if !found {
		return arg
	}
	if i := strings.IndexAny(after, "?#/"); i >= 0 {
		after = after[:i]
	}
	return after
}

func findConversation(recs []export.Record, id string) (export.Conversation, bool) {
	for _, rec := range recs {
		if rec.Result().Get("id").Str != id {
			continue
		}
		c, err := export.Decode(rec)
		if err != nil {
			return export.Conversation{}, false
		}
		return c, true
	}
	return export.Conversation{}, false
}

func previewWidth(out io.Writer, flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

// clip shortens s to at most width runes, marking the cut with an ellipsis.
func clip(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width]) + "…"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
