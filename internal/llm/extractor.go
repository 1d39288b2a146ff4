package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes a small structured output requested from the model.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "SearchKeywords")
	Description string        // System preamble describing the task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Extra bullet-point instructions
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint rendered verbatim, e.g. `["string"]`
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	for _, rule := range schema.Rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// KeywordPhraseSchema asks for one short search phrase per task, used to build
// video and web search queries that surface crash courses.
func KeywordPhraseSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "SearchKeywords",
		Description: `You generate concise, precise search keywords for YouTube and Google to find crash courses.
For each numbered task, produce one phrase of 2-4 words naming the core skill or tool to learn.`,
		Fields: []SchemaField{
			{
				Name:        "items",
				Type:        `["string"]`,
				Description: "One phrase per task, same order and count as the input tasks",
				Required:    true,
			},
		},
		Rules: []string{
			"Use the canonical tool or skill name (e.g. \"Power BI dashboards\", \"SQL joins\").",
			"Do not add words like tutorial, course or beginner.",
		},
	}
}
