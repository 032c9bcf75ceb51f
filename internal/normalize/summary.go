package normalize

import (
	"fmt"
	"strings"
)

// Summary counts what a run did. Every record and conversation that did not
// contribute entries is attributable to one of these counters.
type Summary struct {
	Records       int // elements of the export array
	Malformed     int // records with at least one validation issue
	Invalid       int // records rejected outright (no id, not an object)
	Tagged        int // conversations tagged from the membership map
	OutOfRange    int // excluded by --since/--until
	UnknownUpdate int // excluded by a date range because the update time is unknown
	Conversations int // conversations kept

	MessagesRead int
	DroppedRole  int // messages whose role is neither user nor assistant
	DroppedEmpty int // messages with blank text

	NoMessages int // conversations with nothing left to pair
	NoEntries  int // conversations with messages but no user turn
	Entries    int
	NoResponse int // entries whose response is empty

	Unassigned int // conversations in the no-project bucket
	Conflicts  int // ids claimed by more than one project
}

// Attrs returns the summary as slog key/value pairs.
func (s Summary) Attrs() []any {
	return []any{
		"records", s.Records,
		"malformed", s.Malformed,
		"invalid", s.Invalid,
		"tagged", s.Tagged,
		"out_of_range", s.OutOfRange,
		"unknown_update", s.UnknownUpdate,
		"conversations", s.Conversations,
		"messages_read", s.MessagesRead,
		"dropped_role", s.DroppedRole,
		"dropped_empty", s.DroppedEmpty,
		"no_messages", s.NoMessages,
		"no_entries", s.NoEntries,
		"entries", s.Entries,
		"no_response", s.NoResponse,
		"unassigned", s.Unassigned,
		"conflicts", s.Conflicts,
	}
}

// FormatSummary renders the console summary printed after a run.
func FormatSummary(s Summary, outputs []string) string {
	var sb strings.Builder
	sb.WriteString("\n=== Normalize Summary ===\n")
	fmt.Fprintf(&sb, "Records: %d (%d malformed, %d rejected)\n", s.Records, s.Malformed, s.Invalid)
	fmt.Fprintf(&sb, "Conversations kept: %d\n", s.Conversations)
	if s.OutOfRange > 0 || s.UnknownUpdate > 0 {
		fmt.Fprintf(&sb, "Filtered by date: %d (%d with unknown update time)\n", s.OutOfRange+s.UnknownUpdate, s.UnknownUpdate)
	}
	fmt.Fprintf(&sb, "Messages read: %d (%d other roles, %d empty)\n", s.MessagesRead, s.DroppedRole, s.DroppedEmpty)
	fmt.Fprintf(&sb, "Entries: %d (%d without response)\n", s.Entries, s.NoResponse)
	fmt.Fprintf(&sb, "Conversations without messages: %d\n", s.NoMessages)
	fmt.Fprintf(&sb, "Conversations without entries: %d\n", s.NoEntries)
	fmt.Fprintf(&sb, "Tagged from map: %d\n", s.Tagged)
	fmt.Fprintf(&sb, "Unassigned: %d\n", s.Unassigned)
	fmt.Fprintf(&sb, "Conflicting ids: %d\n", s.Conflicts)
	for _, p := range outputs {
		fmt.Fprintf(&sb, "Output: %s\n", p)
	}
	return sb.String()
}
