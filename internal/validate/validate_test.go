package validate

import (
	"reflect"
	"testing"

	"github.com/MikeSquared-Agency/exportparse/internal/export"
	"github.com/MikeSquared-Agency/exportparse/internal/projects"
)

func parse(t *testing.T, doc string) []export.Record {
	t.Helper()
	recs, err := export.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return recs
}

func fields(issues []Issue) []string {
	var out []string
	for _, is := range issues {
		out = append(out, is.Field)
	}
	return out
}

func TestRecord_Valid(t *testing.T) {
	recs := parse(t, `[
		{"id": "a", "title": "A", "create_time": 1692470000, "update_time": null, "mapping": {}, "project": null},
		{"id": "b", "title": "B", "messages": [], "project": {"id": "g-p-1", "name": "P"}},
		{"id": "c", "title": "C", "create_time": "2025-01-01", "messages": []}
	]`)

	for _, rec := range recs {
		if issues := Record(rec); len(issues) != 0 {
			t.Errorf("record %d: unexpected issues %+v", rec.Index, issues)
		}
	}
}

func TestRecord_ReportsEveryViolation(t *testing.T) {
	recs := parse(t, `[{"id": "", "title": 5, "create_time": true, "messages": {}, "mapping": [], "project": {"id": "p"}}]`)

	issues := Record(recs[0])
	want := []string{"create_time", "encoding", "id", "mapping", "messages", "project", "title"}
	if !reflect.DeepEqual(fields(issues), want) {
		t.Errorf("fields = %v, want %v", fields(issues), want)
	}
	for _, is := range issues {
		if is.Index != 0 || is.Message == "" {
			t.Errorf("issue = %+v", is)
		}
	}
}

func TestRecord_NotAnObject(t *testing.T) {
	recs := parse(t, `[{"id":"ok","title":"t","messages":[]}, 42]`)
	issues := Record(recs[1])
	if len(issues) != 1 || issues[0].Field != "record" || issues[0].Index != 1 {
		t.Errorf("issues = %+v", issues)
	}
}

func TestRecord_CarriesID(t *testing.T) {
	recs := parse(t, `[{"id": "conv-7", "messages": []}]`)
	issues := Record(recs[0])
	if len(issues) != 1 || issues[0].ID != "conv-7" || issues[0].Field != "title" {
		t.Errorf("issues = %+v", issues)
	}
}

func TestRecords_Summary(t *testing.T) {
	recs := parse(t, `[
		{"id": "a", "title": "A", "messages": [], "project": {"id": "p", "name": "P"}},
		{"id": "b", "title": "B"},
		{"title": "no id", "mapping": {}}
	]`)

	rep := Records(recs)
	if rep.Records != 3 || rep.Invalid != 2 {
		t.Errorf("records/invalid = %d/%d", rep.Records, rep.Invalid)
	}
	if rep.WithProject != 1 || rep.WithoutProject != 2 {
		t.Errorf("with/without project = %d/%d", rep.WithProject, rep.WithoutProject)
	}
	if rep.OK() {
		t.Error("report should not be OK")
	}
	if len(rep.Issues) != 2 || rep.Issues[0].Index != 1 || rep.Issues[1].Index != 2 {
		t.Errorf("issues = %+v", rep.Issues)
	}
}

func TestCheckMembership(t *testing.T) {
	recs := parse(t, `[
		{"id": "c1", "project": {"id": "manual_work", "name": "Work"}},
		{"id": "c2", "project": {"id": "manual_home", "name": "Home"}},
		{"id": "c3", "project": null}
	]`)
	m := projects.Membership{Lists: []projects.List{
		{Name: "Home", IDs: []string{"c2", "c1"}},
		{Name: "Work", IDs: []string{"c1", "c3", "gone"}},
	}}

	cc := CheckMembership(recs, m)
	if !reflect.DeepEqual(cc.Missing, []string{"gone"}) {
		t.Errorf("missing = %v", cc.Missing)
	}
	want := []Mismatch{{ID: "c3", Expected: "Work", Actual: ""}}
	if !reflect.DeepEqual(cc.Mismatches, want) {
		t.Errorf("mismatches = %+v, want %+v", cc.Mismatches, want)
	}
	if cc.OK() {
		t.Error("cross-check should not be OK")
	}
}
