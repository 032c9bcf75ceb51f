package pairing

import (
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
)

// FilterStats counts messages removed before pairing.
type FilterStats struct {
	DroppedRole  int // system, tool and other non-conversational roles
	DroppedEmpty int // blank after trimming
}

// SortStable orders messages by creation instant. Unknown instants sort first,
// and messages that compare equal keep their input order.
func SortStable(msgs []export.Message) []export.Message {
	out := make([]export.Message, len(msgs))
	copy(out, msgs)
	// The zero time is earlier than any real instant, so unknown sorts lowest.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// Filter keeps user and assistant messages with non-blank text. Kept messages
// have their text trimmed.
func Filter(msgs []export.Message) ([]export.Message, FilterStats) {
	var (
		kept  []export.Message
		stats FilterStats
	)
	for _, m := range msgs {
		if m.Role != export.RoleUser && m.Role != export.RoleAssistant {
			stats.DroppedRole++
			continue
		}
		m.Text = strings.TrimSpace(m.Text)
		if m.Text == "" {
			stats.DroppedEmpty++
			continue
		}
		kept = append(kept, m)
	}
	return kept, stats
}

// Sequence prepares a conversation's messages for pairing. Flat message lists
// are already chronological and keep their source order; mapping graphs are
// reordered by creation instant.
func Sequence(c export.Conversation) ([]export.Message, FilterStats) {
	msgs := c.Messages
	if c.Encoding == export.EncodingMapping {
		msgs = SortStable(msgs)
	}
	return Filter(msgs)
}
