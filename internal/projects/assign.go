package projects

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
)

// The bucket for conversations without a project. Map-derived ids always carry
// manualPrefix, and export ids are "g-p-" tokens, so neither collides with it.
const (
	NoProjectID   = "none"
	NoProjectName = "No Project"
)

const manualPrefix = "manual_"

var spaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

// ManualTag builds the tag for a project that came from a membership map.
func ManualTag(name string) export.ProjectTag {
	slug := spaceRun.ReplaceAllString(strings.ToLower(name), "_")
	return export.ProjectTag{ID: manualPrefix + slug, Name: name}
}

// Assign tags an untagged conversation from the index. A tag already carried
// by the export is authoritative and is left alone. It reports whether the
// conversation received a tag.
func Assign(c *export.Conversation, ix *Index) bool {
	if c.Project != nil {
		return false
	}
	name, ok := ix.Lookup(c.ID)
	if !ok {
		return false
	}
	tag := ManualTag(name)
	c.Project = &tag
	return true
}

// Apply runs Assign over every conversation and returns how many were tagged.
func Apply(convs []export.Conversation, ix *Index) int {
	n := 0
	for i := range convs {
		if Assign(&convs[i], ix) {
			n++
		}
	}
	return n
}
