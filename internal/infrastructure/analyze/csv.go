package analyze

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

// columnAliases maps common header spellings to canonical column names.
var columnAliases = map[string]string{
	"feature_name":        "name",
	"feature":             "name",
	"name":                "name",
	"title":               "name",
	"description":         "description",
	"desc":                "description",
	"details":             "description",
	"priority":            "priority",
	"prio":                "priority",
	"importance":          "priority",
	"acceptance_criteria": "acceptance_criteria",
	"acceptance":          "acceptance_criteria",
	"criteria":            "acceptance_criteria",
	"ac":                  "acceptance_criteria",
}

var priorityAliases = map[string]spec.Priority{
	"must":     spec.PriorityMust,
	"high":     spec.PriorityMust,
	"critical": spec.PriorityMust,
	"should":   spec.PriorityShould,
	"medium":   spec.PriorityShould,
	"normal":   spec.PriorityShould,
	"could":    spec.PriorityCould,
	"low":      spec.PriorityCould,
	"nice":     spec.PriorityCould,
	"wont":     spec.PriorityWont,
	"won't":    spec.PriorityWont,
	"no":       spec.PriorityWont,
}

// parseCSV extracts features from a CSV specification. The header row is
// normalized through columnAliases; rows without a feature name are skipped.
func parseCSV(content string) ([]spec.Feature, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make([]string, len(header))
	for i, col := range header {
		normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
		if canonical, ok := columnAliases[normalized]; ok {
			columns[i] = canonical
		} else {
			columns[i] = normalized
		}
	}

	var features []spec.Feature
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++

		row := make(map[string]string, len(columns))
		for i, value := range record {
			if i < len(columns) {
				row[columns[i]] = value
			}
		}

		name := strings.TrimSpace(row["name"])
		if name == "" {
			continue
		}

		priority := spec.PriorityShould
		if p, ok := priorityAliases[strings.ToLower(strings.TrimSpace(row["priority"]))]; ok {
			priority = p
		}

		var criteria []string
		for _, c := range strings.Split(row["acceptance_criteria"], ";") {
			if c = strings.TrimSpace(c); c != "" {
				criteria = append(criteria, c)
			}
		}

		features = append(features, spec.Feature{
			ID:                 fmt.Sprintf("f_%d", rowNum),
			Name:               name,
			Description:        strings.TrimSpace(row["description"]),
			Priority:           priority,
			AcceptanceCriteria: criteria,
		})
	}
	return features, nil
}
