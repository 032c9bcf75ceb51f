package projects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RewriteStats counts what RewriteTags did to each record.
type RewriteStats struct {
	Tagged    int // received a tag from the membership map
	Kept      int // already carried a valid tag
	Untagged  int // no tag and no map entry; project set to null
	Unchanged int // not an object, or a malformed tag left as-is
}

// RewriteTags produces a new export document with membership-map tags applied
// to the raw records. Records keep every other field; the input is not
// modified.
func RewriteTags(recs []export.Record, ix *Index) ([]byte, RewriteStats, error) {
	var stats RewriteStats
	out := make([]string, 0, len(recs))

	for _, rec := range recs {
		r := rec.Result()
		if !r.IsObject() {
			stats.Unchanged++
			out = append(out, rec.Raw)
			continue
		}

		project := r.Get("project")
		if export.ParseTag(project) != nil {
			stats.Kept++
			out = append(out, rec.Raw)
			continue
		}

		raw := rec.Raw
		var err error
		if name, ok := ix.Lookup(r.Get("id").Str); ok {
			tag, _ := json.Marshal(ManualTag(name))
			raw, err = sjson.SetRaw(raw, "project", string(tag))
			stats.Tagged++
		} else if project.Type == gjson.Null {
			raw, err = sjson.SetRaw(raw, "project", "null")
			stats.Untagged++
		} else {
			stats.Unchanged++
		}
		if err != nil {
			return nil, stats, fmt.Errorf("rewrite record %d: %w", rec.Index, err)
		}
		out = append(out, raw)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte("["+strings.Join(out, ",")+"]"), "", "  "); err != nil {
		return nil, stats, fmt.Errorf("indent export: %w", err)
	}
	return buf.Bytes(), stats, nil
}
