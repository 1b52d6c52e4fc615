package domain

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestNormalizeFillsNilSequences(t *testing.T) {
	b := Board{ID: "b1", Name: "Sprint", Columns: []Column{
		{ID: "c1", Name: "Todo", Tasks: []Task{{ID: "t1", Title: "x"}}},
		{ID: "c2", Name: "Doing"},
	}}

	b.Normalize()

	if b.Columns[1].Tasks == nil {
		t.Fatal("expected tasks normalized to empty slice")
	}
	if b.Columns[0].Tasks[0].Subtasks == nil {
		t.Fatal("expected subtasks normalized to empty slice")
	}
}

func TestBoardMarshalKeepsEmptySequences(t *testing.T) {
	b := Board{ID: "b1", Name: "Sprint"}
	b.Normalize()

	payload, err := sonic.Marshal(b)
	if err != nil {
		t.Fatalf("marshal board: %v", err)
	}
	if !strings.Contains(string(payload), `"columns":[]`) {
		t.Fatalf("expected columns to serialize as empty array, got %s", payload)
	}
}

func TestColumnAndTaskLookup(t *testing.T) {
	b := Board{Columns: []Column{
		{ID: "c1", Tasks: []Task{{ID: "t1"}, {ID: "t2"}}},
		{ID: "c2"},
	}}

	col := b.Column("c2")
	if col == nil || col.ID != "c2" {
		t.Fatalf("unexpected column lookup result: %#v", col)
	}
	if b.Column("missing") != nil {
		t.Fatal("expected nil for unknown column id")
	}

	task := b.Column("c1").Task("t2")
	if task == nil || task.ID != "t2" {
		t.Fatalf("unexpected task lookup result: %#v", task)
	}
	if b.Column("c1").Task("missing") != nil {
		t.Fatal("expected nil for unknown task id")
	}
}

func TestLookupReturnsAddressableElement(t *testing.T) {
	b := Board{Columns: []Column{{ID: "c1", Tasks: []Task{{ID: "t1"}}}}}

	b.Column("c1").Task("t1").Status = "Done"

	if b.Columns[0].Tasks[0].Status != "Done" {
		t.Fatal("expected lookup to alias the aggregate, not copy it")
	}
}

func TestParseStatuses(t *testing.T) {
	set := ParseStatuses("todo, doing ,done")
	if len(set) != 3 || set[1] != "doing" {
		t.Fatalf("unexpected set: %#v", set)
	}
	if !set.Contains("todo") || set.Contains("To do") {
		t.Fatal("unexpected membership")
	}
	if def := ParseStatuses(" , "); len(def) != len(DefaultStatuses()) {
		t.Fatalf("expected fallback to defaults, got %#v", def)
	}
}

func TestValidateStatusAllowsEmptyLabel(t *testing.T) {
	if err := DefaultStatuses().validateStatus(""); err != nil {
		t.Fatalf("expected empty status to pass, got %v", err)
	}
	if err := DefaultStatuses().validateStatus("Done"); err != nil {
		t.Fatalf("expected known status to pass, got %v", err)
	}
	if err := DefaultStatuses().validateStatus("Blocked"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}
