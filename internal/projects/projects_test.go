package projects

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
)

func TestBuildIndex_ConflictLastWriteWins(t *testing.T) {
	m := Membership{Lists: []List{
		{Name: "Home", IDs: []string{"c1", "shared"}},
		{Name: "Work", IDs: []string{"c2", "shared"}},
	}}

	ix := BuildIndex(m)
	if name, ok := ix.Lookup("shared"); !ok || name != "Work" {
		t.Errorf("shared -> %q, %v; want Work (last merged)", name, ok)
	}
	if name, _ := ix.Lookup("c1"); name != "Home" {
		t.Errorf("c1 -> %q", name)
	}
	if ix.Len() != 3 {
		t.Errorf("len = %d, want 3", ix.Len())
	}

	conflicts := ix.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	want := Conflict{ID: "shared", Projects: []string{"Home", "Work"}, Assigned: "Work"}
	if !reflect.DeepEqual(conflicts[0], want) {
		t.Errorf("conflict = %+v, want %+v", conflicts[0], want)
	}
}

func TestIndex_Nil(t *testing.T) {
	var ix *Index
	if _, ok := ix.Lookup("x"); ok {
		t.Error("nil index resolved an id")
	}
	if ix.Conflicts() != nil || ix.Len() != 0 {
		t.Error("nil index should be empty")
	}
}

func TestManualTag(t *testing.T) {
	tag := ManualTag("Home  Remodel\tPlans")
	if tag.ID != "manual_home_remodel_plans" || tag.Name != "Home  Remodel\tPlans" {
		t.Errorf("tag = %+v", tag)
	}
}

func TestAssign_ExistingTagWins(t *testing.T) {
	ix := BuildIndex(Membership{Lists: []List{{Name: "Work", IDs: []string{"c1", "c2"}}}})
	convs := []export.Conversation{
		{ID: "c1", Project: &export.ProjectTag{ID: "g-p-1", Name: "Native"}},
		{ID: "c2"},
		{ID: "c3"},
	}

	if n := Apply(convs, ix); n != 1 {
		t.Errorf("applied = %d, want 1", n)
	}
	if convs[0].Project.ID != "g-p-1" {
		t.Errorf("export tag replaced: %+v", convs[0].Project)
	}
	if convs[1].Project == nil || convs[1].Project.ID != "manual_work" {
		t.Errorf("c2 tag = %+v", convs[1].Project)
	}
	if convs[2].Project != nil {
		t.Errorf("c3 should stay untagged, got %+v", convs[2].Project)
	}
}

func TestGroup_OrderingAndNoProjectBucket(t *testing.T) {
	t0 := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	convs := []export.Conversation{
		{ID: "loose", Title: "Loose", Created: t0},
		{ID: "w-old", Title: "Old", Updated: t0, Project: &export.ProjectTag{ID: "p-w", Name: "Work"}},
		{ID: "h1", Title: "Home", Project: &export.ProjectTag{ID: "p-h", Name: "Home"}},
		{ID: "w-new", Title: "New", Updated: t0.Add(time.Hour), Project: &export.ProjectTag{ID: "p-w", Name: "Work"}},
		{ID: "w-unknown", Title: "Unknown", Project: &export.ProjectTag{ID: "p-w", Name: "Work"}},
		{ID: "w-created", Title: "Created only", Created: t0.Add(30 * time.Minute), Project: &export.ProjectTag{ID: "p-w", Name: "Work"}},
	}

	got := Group(convs)
	var order []string
	for _, p := range got {
		order = append(order, p.ID)
	}
	if !reflect.DeepEqual(order, []string{"p-h", "p-w", NoProjectID}) {
		t.Fatalf("project order = %v", order)
	}

	var chats []string
	for _, c := range got[1].Chats {
		chats = append(chats, c.ID)
	}
	if !reflect.DeepEqual(chats, []string{"w-new", "w-created", "w-old", "w-unknown"}) {
		t.Errorf("chat order = %v", chats)
	}

	none := got[2]
	if none.Name != NoProjectName || len(none.Chats) != 1 {
		t.Errorf("no-project bucket = %+v", none)
	}
	if none.Chats[0].CreateTime != "2025-08-01T00:00:00.000Z" || none.Chats[0].UpdateTime != "" {
		t.Errorf("summary times = %+v", none.Chats[0])
	}
}

func TestGroup_NameOrderIgnoresCase(t *testing.T) {
	convs := []export.Conversation{
		{ID: "c1", Project: &export.ProjectTag{ID: "p-z", Name: "Zed"}},
		{ID: "c2"},
		{ID: "c3", Project: &export.ProjectTag{ID: "p-b", Name: "Beta"}},
		{ID: "c4", Project: &export.ProjectTag{ID: "p-a", Name: "alpha"}},
		{ID: "c5", Project: &export.ProjectTag{ID: "p-a2", Name: "Alpha"}},
	}

	var order []string
	for _, p := range Group(convs) {
		order = append(order, p.Name)
	}
	want := []string{"Alpha", "alpha", "Beta", "Zed", NoProjectName}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("project order = %v, want %v", order, want)
	}
}

func TestRewriteTags(t *testing.T) {
	recs, err := export.Parse([]byte(`[
		{"id": "c1", "title": "mapped", "extra": {"keep": [1, 2]}},
		{"id": "c2", "title": "native", "project": {"id": "g-p-9", "name": "Native"}},
		{"id": "c3", "title": "loose"},
		{"id": "c4", "title": "odd tag", "project": "weird"},
		"not a record"
	]`))
	if err != nil {
		t.Fatal(err)
	}
	ix := BuildIndex(Membership{Lists: []List{{Name: "My Stuff", IDs: []string{"c1", "c2"}}}})

	out, stats, err := RewriteTags(recs, ix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Tagged != 1 || stats.Kept != 1 || stats.Untagged != 1 || stats.Unchanged != 2 {
		t.Errorf("stats = %+v", stats)
	}

	again, err := export.Parse(out)
	if err != nil {
		t.Fatalf("rewritten document does not parse: %v", err)
	}
	if len(again) != 5 {
		t.Fatalf("expected 5 records, got %d", len(again))
	}

	c1 := again[0].Result()
	if c1.Get("project.id").Str != "manual_my_stuff" || c1.Get("project.name").Str != "My Stuff" {
		t.Errorf("c1 project = %s", c1.Get("project").Raw)
	}
	if c1.Get("extra.keep.1").Int() != 2 {
		t.Errorf("extra fields lost: %s", again[0].Raw)
	}
	if again[1].Result().Get("project.id").Str != "g-p-9" {
		t.Errorf("native tag overwritten: %s", again[1].Raw)
	}
	if p := again[2].Result().Get("project"); !p.Exists() || p.Raw != "null" {
		t.Errorf("c3 project = %q, want explicit null", p.Raw)
	}
	if !strings.Contains(string(out), "\n  ") {
		t.Errorf("output not indented:\n%s", out)
	}
}
