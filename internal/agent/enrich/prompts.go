package enrich

import (
	_ "embed"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const (
	recDelim = "##"
	endDelim = "<|COMPLETE|>"
)

var (
	//go:embed template/system_prompt.txt
	systemPrompt string
	//go:embed template/names_prompt.txt
	namesPrompt string
	//go:embed template/categories_prompt.txt
	categoriesPrompt string
	//go:embed template/review_prompt.txt
	reviewPrompt string
)

// newTemplate pairs the shared system prompt with a task prompt. Both are Go
// templates rendered by the Eino prompt component so prompt callbacks fire.
func newTemplate(task string) prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(task),
	)
}

// baseVars returns the variables every template expects.
func baseVars(maxSuggestions int) map[string]any {
	return map[string]any{
		"MaxSuggestions":      maxSuggestions,
		"RecordDelimiter":     recDelim,
		"CompletionDelimiter": endDelim,
	}
}
