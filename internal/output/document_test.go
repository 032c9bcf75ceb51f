package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/exportparse/internal/pairing"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
)

func sampleDocument() Document {
	return Document{
		ExportedAt: "2025-08-19T18:06:12.000Z",
		RunID:      "run-1",
		Totals:     Totals{Projects: 2, Conversations: 3, Messages: 6, Entries: 3},
		Projects: []projects.Project{
			{ID: "g-p-1", Name: "Travel", Chats: []projects.Chat{
				{ID: "c1", Title: "Cozumel", CreateTime: "2025-08-01T00:00:00.000Z", UpdateTime: "2025-08-02T00:00:00.000Z"},
			}},
			{ID: projects.NoProjectID, Name: projects.NoProjectName, Chats: []projects.Chat{
				{ID: "c2", Title: "Loose"},
				{ID: "c3", Title: "Empty"},
			}},
		},
		ChatEntries: []pairing.Entry{
			{ID: "a1", ChatID: "c1", Prompt: "Rent a car?", Response: "Yes."},
			{ID: "c2:0", ChatID: "c2", Prompt: "q", Response: ""},
			{ID: "u9", ChatID: "c2", Prompt: "multi\nline", Response: "r"},
		},
	}
}

func TestEncodeJSON_Shape(t *testing.T) {
	data, err := EncodeJSON(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	for _, key := range []string{"exportedAt", "runId", "totals", "projects", "chatEntries"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	// Unknown instants are absent, not fabricated.
	if strings.Contains(string(data), `"createTime": ""`) {
		t.Error("unknown createTime rendered as empty string")
	}
	// Empty responses are kept as "".
	if !strings.Contains(string(data), `"response": ""`) {
		t.Error("empty response missing from output")
	}
}

func TestEncodeJSON_EmptyListsAreArrays(t *testing.T) {
	data, err := EncodeJSON(Document{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"projects": []`) || !strings.Contains(string(data), `"chatEntries": []`) {
		t.Errorf("empty document should carry empty arrays:\n%s", data)
	}
}

func TestLines_RoundTripMatchesStructuredDocument(t *testing.T) {
	doc := sampleDocument()

	structured, err := EncodeJSON(doc)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON Document
	if err := json.Unmarshal(structured, &fromJSON); err != nil {
		t.Fatal(err)
	}

	lines, err := EncodeLines(doc)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(lines), "\n"); n != 5 {
		t.Errorf("expected 5 lines, got %d", n)
	}
	projs, entries, err := DecodeLines(lines)
	if err != nil {
		t.Fatalf("decode lines: %v", err)
	}

	if !reflect.DeepEqual(projs, fromJSON.Projects) {
		t.Errorf("projects differ:\nlines: %+v\njson:  %+v", projs, fromJSON.Projects)
	}
	if !reflect.DeepEqual(entries, fromJSON.ChatEntries) {
		t.Errorf("entries differ:\nlines: %+v\njson:  %+v", entries, fromJSON.ChatEntries)
	}
}

func TestEncodeLines_Tags(t *testing.T) {
	lines, err := EncodeLines(sampleDocument())
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(lines), "\n", 2)[0]
	if !strings.HasPrefix(first, `{"type":"project","data":{"id":"g-p-1"`) {
		t.Errorf("first line = %s", first)
	}
	if !strings.Contains(string(lines), `{"type":"chatEntry","data":{"id":"a1","chatId":"c1"`) {
		t.Errorf("entry line missing:\n%s", lines)
	}
}

func TestDecodeLines_Errors(t *testing.T) {
	if _, _, err := DecodeLines([]byte(`{"type":"mystery","data":{}}`)); err == nil {
		t.Error("expected error for unknown line type")
	}
	if _, _, err := DecodeLines([]byte("{not json}\n")); err == nil {
		t.Error("expected error for malformed line")
	}
	projs, entries, err := DecodeLines([]byte("\n\n"))
	if err != nil || len(projs) != 0 || len(entries) != 0 {
		t.Errorf("blank input: %v %v %v", projs, entries, err)
	}
}

func TestWriteFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "structured.json")
	if err := WriteFile(path, []byte("{}\n")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteFiles_AllOrNothing(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := WriteFiles([]File{
		{Path: filepath.Join(dir, "structured.json"), Data: []byte("{}\n")},
		{Path: filepath.Join(blocker, "structured.jsonl"), Data: []byte("\n")},
	})
	if err == nil {
		t.Fatal("expected error when the second file cannot be written")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "blocker" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory should be untouched, found %v", names)
	}
}

func TestWriteFiles_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.jsonl")
	if err := os.WriteFile(a, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFiles([]File{{Path: a, Data: []byte("new-a")}, {Path: b, Data: []byte("new-b")}}); err != nil {
		t.Fatalf("WriteFiles failed: %v", err)
	}
	for path, want := range map[string]string{a: "new-a", b: "new-b"} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", filepath.Base(path), data, want)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o644 {
			t.Errorf("%s mode = %v", filepath.Base(path), info.Mode().Perm())
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected only the two targets, found %d entries", len(entries))
	}
}
