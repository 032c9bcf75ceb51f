package projects

import (
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
)

// Chat is the lightweight conversation summary carried by a Project.
type Chat struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	CreateTime string `json:"createTime,omitempty"`
	UpdateTime string `json:"updateTime,omitempty"`
}

// Project groups conversation summaries under one project tag.
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Chats []Chat `json:"chats"`
}

type bucket struct {
	id    string
	name  string
	convs []export.Conversation
}

// Group buckets conversations by project tag. Named projects come first,
// sorted by name ignoring case; the no-project bucket is last. Within a
// project the most recently updated conversation comes first.
func Group(convs []export.Conversation) []Project {
	byID := make(map[string]*bucket)
	var order []*bucket

	for _, c := range convs {
		id, name := NoProjectID, NoProjectName
		if c.Project != nil {
			id, name = c.Project.ID, c.Project.Name
		}
		b, ok := byID[id]
		if !ok {
			b = &bucket{id: id, name: name}
			byID[id] = b
			order = append(order, b)
		}
		b.convs = append(b.convs, c)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if (a.id == NoProjectID) != (b.id == NoProjectID) {
			return b.id == NoProjectID
		}
		if la, lb := strings.ToLower(a.name), strings.ToLower(b.name); la != lb {
			return la < lb
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.id < b.id
	})

	projects := make([]Project, 0, len(order))
	for _, b := range order {
		sort.SliceStable(b.convs, func(i, j int) bool {
			return Recency(b.convs[i]).After(Recency(b.convs[j]))
		})
		p := Project{ID: b.id, Name: b.name, Chats: make([]Chat, 0, len(b.convs))}
		for _, c := range b.convs {
			p.Chats = append(p.Chats, Summarize(c))
		}
		projects = append(projects, p)
	}
	return projects
}

// Summarize builds the chat summary for a conversation.
func Summarize(c export.Conversation) Chat {
	return Chat{
		ID:         c.ID,
		Title:      c.Title,
		CreateTime: export.FormatInstant(c.Created),
		UpdateTime: export.FormatInstant(c.Updated),
	}
}

// Recency is the update instant, falling back to creation. Unknown is zero and
// therefore sorts last in a most-recent-first order.
func Recency(c export.Conversation) time.Time {
	if !c.Updated.IsZero() {
		return c.Updated
	}
	return c.Created
}
