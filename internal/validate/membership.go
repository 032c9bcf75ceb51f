package validate

import (
	"sort"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
)

// Mismatch is a conversation whose tag disagrees with the membership map.
type Mismatch struct {
	ID       string
	Expected string
	Actual   string // "" when the conversation is untagged
}

// CrossCheck compares a tagged export against the membership map it was
// built from.
type CrossCheck struct {
	Missing    []string // map ids absent from the export
	Mismatches []Mismatch
}

// OK reports whether the export agrees with the map.
func (c CrossCheck) OK() bool {
	return len(c.Missing) == 0 && len(c.Mismatches) == 0
}

// CheckMembership verifies that every id in the map is present in the export
// and carries the project the map assigns it (after last-write-wins).
func CheckMembership(recs []export.Record, m projects.Membership) CrossCheck {
	actual := make(map[string]string, len(recs))
	for _, rec := range recs {
		res := rec.Result()
		id := res.Get("id").Str
		if id == "" {
			continue
		}
		name := ""
		if tag := export.ParseTag(res.Get("project")); tag != nil {
			name = tag.Name
		}
		actual[id] = name
	}

	ix := projects.BuildIndex(m)
	seen := make(map[string]bool)
	var cc CrossCheck
	for _, l := range m.Lists {
		for _, id := range l.IDs {
			if seen[id] {
				continue
			}
			seen[id] = true

			expected, _ := ix.Lookup(id)
			got, ok := actual[id]
			switch {
			case !ok:
				cc.Missing = append(cc.Missing, id)
			case got != expected:
				cc.Mismatches = append(cc.Mismatches, Mismatch{ID: id, Expected: expected, Actual: got})
			}
		}
	}
	sort.Strings(cc.Missing)
	sort.Slice(cc.Mismatches, func(i, j int) bool { return cc.Mismatches[i].ID < cc.Mismatches[j].ID })
	return cc
}
