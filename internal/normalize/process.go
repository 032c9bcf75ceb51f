package normalize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
	"github.com/MikeSquared-Agency/exportparse/internal/output"
	"github.com/MikeSquared-Agency/exportparse/internal/pairing"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
	"github.com/MikeSquared-Agency/exportparse/internal/validate"
)

// Options control a single pass over an export.
type Options struct {
	Since time.Time // inclusive; zero means open
	Until time.Time // inclusive; zero means open
	RunID string
	Now   time.Time
}

func (o Options) hasRange() bool {
	return !o.Since.IsZero() || !o.Until.IsZero()
}

// Skip is a record that could not be turned into a conversation.
type Skip struct {
	Index  int
	Reason string
}

// Result is everything one pass over an export produced.
type Result struct {
	Document  output.Document
	Summary   Summary
	Skipped   []Skip
	Issues    []validate.Issue
	Conflicts []projects.Conflict
}

// Process normalizes an export in memory: records are decoded, tagged from
// the membership index, filtered by date, sequenced and paired, then grouped
// into projects. Records are handled in input order; the context is checked
// between records.
func Process(ctx context.Context, recs []export.Record, ix *projects.Index, opts Options) (*Result, error) {
	res := &Result{}
	s := &res.Summary
	s.Records = len(recs)

	var (
		kept    []export.Conversation
		entries []pairing.Entry
		msgs    int
	)

	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if issues := validate.Record(rec); len(issues) > 0 {
			s.Malformed++
			res.Issues = append(res.Issues, issues...)
		}

		conv, err := export.Decode(rec)
		if err != nil {
			s.Invalid++
			res.Skipped = append(res.Skipped, Skip{Index: rec.Index, Reason: reason(err)})
			continue
		}

		if projects.Assign(&conv, ix) {
			s.Tagged++
		}

		if opts.hasRange() {
			if conv.Updated.IsZero() {
				s.UnknownUpdate++
				continue
			}
			if !inRange(conv.Updated, opts.Since, opts.Until) {
				s.OutOfRange++
				continue
			}
		}

		s.Conversations++
		s.MessagesRead += len(conv.Messages)
		if conv.Project == nil {
			s.Unassigned++
		}

		seq, fs := pairing.Sequence(conv)
		s.DroppedRole += fs.DroppedRole
		s.DroppedEmpty += fs.DroppedEmpty
		msgs += len(seq)

		pairs := pairing.Pair(conv.ID, seq)
		switch {
		case len(seq) == 0:
			s.NoMessages++
		case len(pairs) == 0:
			s.NoEntries++
		}
		for _, e := range pairs {
			if e.Response == "" {
				s.NoResponse++
			}
		}
		s.Entries += len(pairs)

		entries = append(entries, pairs...)
		kept = append(kept, conv)
	}

	res.Conflicts = ix.Conflicts()
	s.Conflicts = len(res.Conflicts)

	groups := projects.Group(kept)
	res.Document = output.Document{
		ExportedAt: export.FormatInstant(opts.Now),
		RunID:      opts.RunID,
		Totals: output.Totals{
			Projects:      len(groups),
			Conversations: len(kept),
			Messages:      msgs,
			Entries:       len(entries),
		},
		Projects:    groups,
		ChatEntries: entries,
	}
	return res, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, export.ErrMissingID):
		return "missing id"
	case errors.Is(err, export.ErrNotObject):
		return "not an object"
	}
	return err.Error()
}

func inRange(t, since, until time.Time) bool {
	if !since.IsZero() && t.Before(since) {
		return false
	}
	if !until.IsZero() && t.After(until) {
		return false
	}
	return true
}

const dateLayout = "2006-01-02"

// ParseBound parses a --since/--until value: a bare date (UTC) or an RFC 3339
// instant. A bare date used as an upper bound means the end of that day.
func ParseBound(s string, upper bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		if upper {
			return t.Add(24*time.Hour - time.Millisecond), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}
