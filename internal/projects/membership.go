package projects

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidMap is returned when a membership map is not an object of lists.
var ErrInvalidMap = errors.New("membership map must be an object of project name to conversation ids")

// List is one project's conversation ids, deduplicated, in file order.
type List struct {
	Name string
	IDs  []string
}

// Membership is a project membership map in the order its keys appear in the
// file. That order is the merge order used to resolve conflicts.
type Membership struct {
	Lists   []List
	Skipped []string // project names whose value was not a list
}

// LoadMembership reads a membership map file. JSON and YAML are both accepted.
func LoadMembership(path string) (Membership, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Membership{}, fmt.Errorf("read membership map: %w", err)
	}
	m, err := ParseMembership(data)
	if err != nil {
		return Membership{}, fmt.Errorf("parse membership map %s: %w", path, err)
	}
	return m, nil
}

// ParseMembership decodes a membership map document.
func ParseMembership(data []byte) (Membership, error) {
	var m Membership
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Membership{}, err
	}
	return m, nil
}

// UnmarshalYAML walks the mapping node directly so that key order survives.
func (m *Membership) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return ErrInvalidMap
	}

	pos := make(map[string]int)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]
		if value.Kind != yaml.SequenceNode {
			m.Skipped = append(m.Skipped, name)
			continue
		}

		ids := stringItems(value)
		if at, ok := pos[name]; ok {
			// Repeated project name: merge into the first occurrence.
			m.Lists[at].IDs = dedupe(append(m.Lists[at].IDs, ids...))
			continue
		}
		pos[name] = len(m.Lists)
		m.Lists = append(m.Lists, List{Name: name, IDs: dedupe(ids)})
	}
	return nil
}

// stringItems returns the trimmed, non-empty string items of a sequence.
// Numbers and other non-string items are ignored.
func stringItems(seq *yaml.Node) []string {
	var out []string
	for _, item := range seq.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			continue
		}
		if id := strings.TrimSpace(item.Value); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
