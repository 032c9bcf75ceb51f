package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MikeSquared-Agency/exportparse/internal/pairing"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
)

// Line kinds in the line-delimited document.
const (
	KindProject   = "project"
	KindChatEntry = "chatEntry"
)

// Totals summarizes the document contents.
type Totals struct {
	Projects      int `json:"projects"`
	Conversations int `json:"conversations"`
	Messages      int `json:"messages"`
	Entries       int `json:"entries"`
}

// Document is the normalized projects + entries output.
type Document struct {
	ExportedAt  string             `json:"exportedAt"`
	RunID       string             `json:"runId"`
	Totals      Totals             `json:"totals"`
	Projects    []projects.Project `json:"projects"`
	ChatEntries []pairing.Entry    `json:"chatEntries"`
}

// Line is one record of the line-delimited document.
type Line struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodeJSON renders the structured document.
func EncodeJSON(doc Document) ([]byte, error) {
	if doc.Projects == nil {
		doc.Projects = []projects.Project{}
	}
	if doc.ChatEntries == nil {
		doc.ChatEntries = []pairing.Entry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeLines renders the line-delimited document: every project, then every
// entry, one JSON object per line, in document order.
func EncodeLines(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	write := func(kind string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", kind, err)
		}
		return enc.Encode(Line{Type: kind, Data: data})
	}

	for _, p := range doc.Projects {
		if err := write(KindProject, p); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.ChatEntries {
		if err := write(KindChatEntry, e); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeLines reads a line-delimited document back into its projects and
// entries. Unknown line kinds are rejected.
func DecodeLines(data []byte) ([]projects.Project, []pairing.Entry, error) {
	var (
		projs   []projects.Project
		entries []pairing.Entry
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var line Line
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", n, err)
		}
		switch line.Type {
		case KindProject:
			var p projects.Project
			if err := json.Unmarshal(line.Data, &p); err != nil {
				return nil, nil, fmt.Errorf("line %d: project: %w", n, err)
			}
			projs = append(projs, p)
		case KindChatEntry:
			var e pairing.Entry
			if err := json.Unmarshal(line.Data, &e); err != nil {
				return nil, nil, fmt.Errorf("line %d: entry: %w", n, err)
			}
			entries = append(entries, e)
		default:
			return nil, nil, fmt.Errorf("line %d: unknown type %q", n, line.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan: %w", err)
	}
	return projs, entries, nil
}

// File is one encoded output document and the path it belongs at.
type File struct {
	Path string
	Data []byte
}

// WriteFile writes a whole output document with a single write call,
// creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	return WriteFiles([]File{{Path: path, Data: data}})
}

// WriteFiles stages each document in a temporary file next to its target and
// renames them into place only once every document has been staged. A failed
// write leaves no target touched.
func WriteFiles(files []File) error {
	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, p := range staged {
			_ = os.Remove(p)
		}
	}

	for _, f := range files {
		tmp, err := stage(f)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
	}

	for i, f := range files {
		if err := os.Rename(staged[i], f.Path); err != nil {
			cleanup()
			return fmt.Errorf("rename %s: %w", f.Path, err)
		}
	}
	return nil
}

func stage(f File) (string, error) {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", f.Path, err)
	}
	name := tmp.Name()

	_, err = tmp.Write(f.Data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, 0o644)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("write %s: %w", f.Path, err)
	}
	return name, nil
}
