package analyze

import (
	"testing"

	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

func TestParseCSVFeatures(t *testing.T) {
	content := `Feature Name,Description,Priority,Acceptance Criteria
Task creation,Create tasks with a title,Must,Title is required; Task appears in list
Dark mode,Toggleable dark theme,Could,
Search,Find tasks by keyword,,Matches title and description
`
	features, err := parseCSV(content)
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(features) != 3 {
		t.Fatalf("len(features) = %d, want 3", len(features))
	}

	first := features[0]
	if first.ID != "f_1" || first.Name != "Task creation" {
		t.Errorf("first feature = %+v", first)
	}
	if first.Priority != spec.PriorityMust {
		t.Errorf("first priority = %q, want must", first.Priority)
	}
	if len(first.AcceptanceCriteria) != 2 {
		t.Errorf("first criteria = %v, want 2 entries", first.AcceptanceCriteria)
	}

	if features[1].Priority != spec.PriorityCould {
		t.Errorf("second priority = %q, want could", features[1].Priority)
	}
	// Missing priority falls back to should.
	if features[2].Priority != spec.PriorityShould {
		t.Errorf("third priority = %q, want should", features[2].Priority)
	}
}

func TestParseCSVHeaderAliases(t *testing.T) {
	content := "title,details,importance\nExport,Export tasks to CSV,high\n"
	features, err := parseCSV(content)
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("len(features) = %d, want 1", len(features))
	}
	f := features[0]
	if f.Name != "Export" || f.Description != "Export tasks to CSV" || f.Priority != spec.PriorityMust {
		t.Errorf("feature = %+v", f)
	}
}

func TestParseCSVSkipsNamelessRows(t *testing.T) {
	content := "name,description\n,orphan description\nReal feature,does things\n"
	features, err := parseCSV(content)
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(features) != 1 || features[0].Name != "Real feature" {
		t.Fatalf("features = %+v, want only Real feature", features)
	}
}

func TestParseCSVEmptyContent(t *testing.T) {
	if _, err := parseCSV(""); err == nil {
		t.Fatal("parseCSV(\"\") expected error, got nil")
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	content := "name,description,priority\nShort row\n"
	features, err := parseCSV(content)
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(features) != 1 || features[0].Name != "Short row" {
		t.Fatalf("features = %+v", features)
	}
}
