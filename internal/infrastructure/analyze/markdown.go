package analyze

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

var (
	titleRe    = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	h2Re       = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	h3Re       = regexp.MustCompile(`(?m)^###\s+(.+)$`)
	listItemRe = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+)$`)
	boldNameRe = regexp.MustCompile(`^\*\*(.+?)\*\*[:\s]*(.*)$`)
	tableRowRe = regexp.MustCompile(`(?m)^\|(.+)\|$`)
	separatorRe = regexp.MustCompile(`^[\s\-:|]+$`)
	endpointRe = regexp.MustCompile(`(?i)\*?\*?(GET|POST|PUT|PATCH|DELETE)\*?\*?\s*[` + "`" + `"]?(/[\w/{}\-]+)[` + "`" + `"]?\s*[-–—]?\s*(.*)`)
	fieldRe    = regexp.MustCompile(`(\w+)[:\s]+(\w+)(?:\s*\((.+)\))?`)
	compTypeRe = regexp.MustCompile(`(?i)^\((page|layout|component|modal|form)\)[:\s]*`)
)

// parsedMarkdown is the raw structure lifted from a markdown document.
type parsedMarkdown struct {
	Title        string
	Description  string
	Features     []spec.Feature
	DataModels   []spec.DataModel
	APIEndpoints []spec.APIEndpoint
	UIComponents []spec.UIComponent
}

// parseMarkdown extracts the structured pieces of a markdown specification:
// the first H1 is the title, H2 headers split the document into sections,
// and each section is parsed by shape (lists, tables, H3 subsections).
func parseMarkdown(content string) *parsedMarkdown {
	result := &parsedMarkdown{}

	if m := titleRe.FindStringSubmatch(content); m != nil {
		result.Title = strings.TrimSpace(m[1])
	}

	sections := splitSections(content, h2Re)
	if desc, ok := sections["description"]; ok {
		result.Description = strings.TrimSpace(desc)
	}
	if body, ok := sections["features"]; ok {
		result.Features = parseFeatures(body)
	}
	if body, ok := sections["data models"]; ok {
		result.DataModels = parseDataModels(body)
	}
	if body, ok := sections["api endpoints"]; ok {
		result.APIEndpoints = parseEndpoints(body)
	} else if body, ok := sections["api"]; ok {
		result.APIEndpoints = parseEndpoints(body)
	}
	if body, ok := sections["ui components"]; ok {
		result.UIComponents = parseComponents(body)
	} else if body, ok := sections["components"]; ok {
		result.UIComponents = parseComponents(body)
	}

	return result
}

// splitSections splits content on the given header pattern; keys are
// lowercased for H2 lookups and kept as-is for H3 names.
func splitSections(content string, re *regexp.Regexp) map[string]string {
	sections := make(map[string]string)
	matches := re.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		name := strings.TrimSpace(content[m[2]:m[3]])
		if re == h2Re {
			name = strings.ToLower(name)
		}
		start := m[1]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sections[name] = strings.TrimSpace(content[start:end])
	}
	return sections
}

func listItems(content string) []string {
	var items []string
	for _, m := range listItemRe.FindAllStringSubmatch(content, -1) {
		items = append(items, strings.TrimSpace(m[1]))
	}
	return items
}

// splitItem parses "**Name**: Description" or "Name: Description" items.
func splitItem(item string) (name, description string) {
	if m := boldNameRe.FindStringSubmatch(item); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if idx := strings.Index(item, ":"); idx >= 0 {
		return strings.TrimSpace(item[:idx]), strings.TrimSpace(item[idx+1:])
	}
	return strings.TrimSpace(item), ""
}

func parseFeatures(content string) []spec.Feature {
	var features []spec.Feature

	h3 := splitSections(content, h3Re)
	if len(h3) > 0 {
		// Features grouped by subsection; "core" sections are must-haves.
		for sectionName, body := range h3 {
			priority := spec.PriorityShould
			if strings.Contains(strings.ToLower(sectionName), "core") {
				priority = spec.PriorityMust
			}
			for _, item := range listItems(body) {
				name, description := splitItem(item)
				features = append(features, spec.Feature{
					ID:          fmt.Sprintf("f_%d", len(features)+1),
					Name:        name,
					Description: description,
					Priority:    priority,
				})
			}
		}
		return features
	}

	for i, item := range listItems(content) {
		name, description := splitItem(item)
		features = append(features, spec.Feature{
			ID:          fmt.Sprintf("f_%d", i+1),
			Name:        name,
			Description: description,
			Priority:    spec.PriorityShould,
		})
	}
	return features
}

func parseDataModels(content string) []spec.DataModel {
	var models []spec.DataModel
	for name, body := range splitSections(content, h3Re) {
		models = append(models, spec.DataModel{
			Name:        name,
			Description: fmt.Sprintf("The %s entity", name),
			Fields:      parseModelFields(body),
		})
	}
	return models
}

func parseModelFields(content string) []spec.ModelField {
	if rows := parseTable(content); len(rows) > 0 {
		var fields []spec.ModelField
		for _, row := range rows {
			if len(row) < 2 {
				continue
			}
			field := spec.ModelField{
				Name:     strings.TrimSpace(row[0]),
				Type:     normalizeType(row[1]),
				Required: true,
			}
			if len(row) > 2 {
				field.Required = strings.Contains(strings.ToLower(row[2]), "yes")
			}
			if len(row) > 3 {
				field.Description = strings.TrimSpace(row[3])
			}
			fields = append(fields, field)
		}
		return fields
	}

	// List format: - field_name: type (description)
	var fields []spec.ModelField
	for _, item := range listItems(content) {
		m := fieldRe.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		description := m[3]
		required := strings.Contains(strings.ToLower(description), "required") ||
			!strings.Contains(strings.ToLower(description), "optional")
		fields = append(fields, spec.ModelField{
			Name:        m[1],
			Type:        normalizeType(m[2]),
			Required:    required,
			Description: description,
		})
	}
	return fields
}

func normalizeType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "string", "str", "text", "varchar":
		return "string"
	case "int", "integer", "float", "decimal", "number":
		return "number"
	case "bool", "boolean":
		return "boolean"
	case "date":
		return "date"
	case "datetime", "timestamp":
		return "datetime"
	case "json", "object":
		return "json"
	case "array", "list":
		return "array"
	case "uuid":
		return "uuid"
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}

func parseEndpoints(content string) []spec.APIEndpoint {
	var endpoints []spec.APIEndpoint
	seen := make(map[string]bool)

	add := func(method, path, description string) {
		key := method + " " + path
		if seen[key] {
			return
		}
		seen[key] = true
		if description == "" {
			description = key
		}
		endpoints = append(endpoints, spec.APIEndpoint{
			Method:      method,
			Path:        path,
			Description: description,
		})
	}

	for name, body := range splitSections(content, h3Re) {
		if m := endpointRe.FindStringSubmatch(body); m != nil {
			add(strings.ToUpper(m[1]), m[2], name)
		}
	}
	for _, item := range listItems(content) {
		if m := endpointRe.FindStringSubmatch(item); m != nil {
			add(strings.ToUpper(m[1]), m[2], strings.TrimSpace(m[3]))
		}
	}
	return endpoints
}

func parseComponents(content string) []spec.UIComponent {
	var components []spec.UIComponent

	h3 := splitSections(content, h3Re)
	if len(h3) == 0 {
		for _, item := range listItems(content) {
			if c, ok := parseComponentItem(item); ok {
				components = append(components, c)
			}
		}
		return components
	}

	for sectionName, body := range h3 {
		sectionType := spec.ComponentWidget
		lower := strings.ToLower(sectionName)
		if strings.Contains(lower, "page") {
			sectionType = spec.ComponentPage
		} else if strings.Contains(lower, "layout") {
			sectionType = spec.ComponentLayout
		}
		for _, item := range listItems(body) {
			c, ok := parseComponentItem(item)
			if !ok {
				continue
			}
			if c.Type == spec.ComponentWidget {
				c.Type = sectionType
			}
			components = append(components, c)
		}
	}
	return components
}

// parseComponentItem parses "**Name** (type): Description" items; the
// parenthesized type hint is optional.
func parseComponentItem(item string) (spec.UIComponent, bool) {
	name, description := splitItem(item)
	if name == "" {
		return spec.UIComponent{}, false
	}
	compType := spec.ComponentWidget
	if m := compTypeRe.FindStringSubmatch(description); m != nil {
		compType = spec.ComponentType(strings.ToLower(m[1]))
		description = strings.TrimSpace(description[len(m[0]):])
	}
	if description == "" {
		description = name + " component"
	}
	return spec.UIComponent{Name: name, Type: compType, Description: description}, true
}

// parseTable returns the data rows of a markdown table, skipping the header
// and separator rows.
func parseTable(content string) [][]string {
	var rows [][]string
	matches := tableRowRe.FindAllStringSubmatch(content, -1)
	for i, m := range matches {
		if separatorRe.MatchString(m[1]) {
			continue
		}
		if i == 0 {
			continue
		}
		cells := strings.Split(m[1], "|")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		rows = append(rows, cells)
	}
	return rows
}
