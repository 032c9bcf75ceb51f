package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON = errors.New("export is not valid JSON")
	ErrNotArray    = errors.New("export is not a JSON array")
)

// Record is one element of the export array, kept as its original JSON text
// so that downstream steps can validate it or rewrite it without loss.
type Record struct {
	Index int
	Raw   string
}

// Result parses the record for path lookups.
func (r Record) Result() gjson.Result {
	return gjson.Parse(r.Raw)
}

// ReadFile loads an export document from disk. The whole file is read before
// any record is looked at.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	recs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse export %s: %w", path, err)
	}
	return recs, nil
}

// Parse splits an export document into its records. A document that is not
// valid JSON or not an array is fatal.
func Parse(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, ErrNotArray
	}

	var recs []Record
	doc.ForEach(func(_, v gjson.Result) bool {
		recs = append(recs, Record{Index: len(recs), Raw: v.Raw})
		return true
	})
	return recs, nil
}
