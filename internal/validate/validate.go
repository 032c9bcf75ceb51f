package validate

import (
	"errors"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/tidwall/gjson"
)

// Issue is one rule broken by one record.
type Issue struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Report is the outcome of validating a whole export.
type Report struct {
	Records        int
	Invalid        int // records with at least one issue
	WithProject    int
	WithoutProject int
	Issues         []Issue
}

// OK reports whether every record passed.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

// record exposes the fields of an export record to the rule set.
type record struct {
	ID         gjson.Result    `json:"id"`
	Title      gjson.Result    `json:"title"`
	CreateTime gjson.Result    `json:"create_time"`
	UpdateTime gjson.Result    `json:"update_time"`
	Messages   gjson.Result    `json:"messages"`
	Mapping    gjson.Result    `json:"mapping"`
	Project    gjson.Result    `json:"project"`
	Encoding   export.Encoding `json:"encoding"`
}

// Records validates every record and collects every issue found.
func Records(recs []export.Record) Report {
	rep := Report{Records: len(recs)}
	for _, rec := range recs {
		issues := Record(rec)
		if len(issues) > 0 {
			rep.Invalid++
			rep.Issues = append(rep.Issues, issues...)
		}
		if export.ParseTag(rec.Result().Get("project")) != nil {
			rep.WithProject++
		} else {
			rep.WithoutProject++
		}
	}
	return rep
}

// Record validates one record. Issues are ordered by field name.
func Record(rec export.Record) []Issue {
	res := rec.Result()
	if !res.IsObject() {
		return []Issue{{Index: rec.Index, Field: "record", Message: "must be an object"}}
	}

	r := record{
		ID:         res.Get("id"),
		Title:      res.Get("title"),
		CreateTime: res.Get("create_time"),
		UpdateTime: res.Get("update_time"),
		Messages:   res.Get("messages"),
		Mapping:    res.Get("mapping"),
		Project:    res.Get("project"),
		Encoding:   export.DetectEncoding(res),
	}

	err := validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.By(nonEmptyString)),
		validation.Field(&r.Title, validation.By(isString)),
		validation.Field(&r.CreateTime, validation.By(optionalTimestamp)),
		validation.Field(&r.UpdateTime, validation.By(optionalTimestamp)),
		validation.Field(&r.Messages, validation.By(optionalArray)),
		validation.Field(&r.Mapping, validation.By(optionalObject)),
		validation.Field(&r.Project, validation.By(projectTag)),
		validation.Field(&r.Encoding, validation.By(hasEncoding)),
	)
	if err == nil {
		return nil
	}

	id := ""
	if r.ID.Type == gjson.String {
		id = r.ID.Str
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Index: rec.Index, ID: id, Field: "record", Message: err.Error()}}
	}

	fields := make([]string, 0, len(fieldErrs))
	for f := range fieldErrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	issues := make([]Issue, 0, len(fields))
	for _, f := range fields {
		issues = append(issues, Issue{Index: rec.Index, ID: id, Field: f, Message: fieldErrs[f].Error()})
	}
	return issues
}

func nonEmptyString(v any) error {
	r := v.(gjson.Result)
	if r.Type != gjson.String || strings.TrimSpace(r.Str) == "" {
		return errors.New("must be a non-empty string")
	}
	return nil
}

func isString(v any) error {
	if v.(gjson.Result).Type != gjson.String {
		return errors.New("must be a string")
	}
	return nil
}

func optionalTimestamp(v any) error {
	switch v.(gjson.Result).Type {
	case gjson.Null, gjson.Number, gjson.String:
		return nil
	}
	return errors.New("must be a number, a string or null")
}

func optionalArray(v any) error {
	r := v.(gjson.Result)
	if r.Exists() && !r.IsArray() {
		return errors.New("must be an array")
	}
	return nil
}

func optionalObject(v any) error {
	r := v.(gjson.Result)
	if r.Exists() && !r.IsObject() {
		return errors.New("must be an object")
	}
	return nil
}

func projectTag(v any) error {
	r := v.(gjson.Result)
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if !r.IsObject() || r.Get("id").Type != gjson.String || r.Get("name").Type != gjson.String {
		return errors.New("must be null or an object with string id and name")
	}
	return nil
}

func hasEncoding(v any) error {
	if v.(export.Encoding) == export.EncodingNone {
		return errors.New("neither a messages array nor a mapping object is present")
	}
	return nil
}
