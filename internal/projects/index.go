package projects

import "sort"

// Conflict is a conversation id listed under more than one project.
type Conflict struct {
	ID       string   `json:"id"`
	Projects []string `json:"projects"` // in merge order
	Assigned string   `json:"assigned"` // the project that won (last merged)
}

// Index resolves conversation ids to project names. When an id is listed by
// several projects, the project merged last wins and the clash is recorded.
type Index struct {
	byID map[string]string
	seen map[string][]string
}

// BuildIndex merges membership lists in order.
func BuildIndex(m Membership) *Index {
	ix := &Index{
		byID: make(map[string]string),
		seen: make(map[string][]string),
	}
	for _, l := range m.Lists {
		for _, id := range l.IDs {
			ix.byID[id] = l.Name
			ix.seen[id] = append(ix.seen[id], l.Name)
		}
	}
	return ix
}

// Lookup returns the project name assigned to a conversation id.
// A nil index resolves nothing.
func (ix *Index) Lookup(id string) (string, bool) {
	if ix == nil {
		return "", false
	}
	name, ok := ix.byID[id]
	return name, ok
}

// Len returns the number of distinct conversation ids in the index.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byID)
}

// Conflicts lists every id claimed by more than one project, sorted by id.
func (ix *Index) Conflicts() []Conflict {
	if ix == nil {
		return nil
	}
	var out []Conflict
	for id, names := range ix.seen {
		if len(names) < 2 {
			continue
		}
		out = append(out, Conflict{
			ID:       id,
			Projects: append([]string(nil), names...),
			Assigned: ix.byID[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
