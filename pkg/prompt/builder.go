// Package prompt assembles the strings sent to the model. Everything
// here is a pure function over its arguments.
package prompt

import "fmt"

const (
	textTemplate  = "Please answer the question based on this text:\n\n%s\n\nQuestion:%s"
	imageTemplate = "This is ocr result of the image:\n\n%s\n\nQuestion:%s"
)

// instructions is prepended to single-shot queries only. Chat mode
// deliberately sends user input as-is.
const instructions = `Please answer my question with your output formatted in strict Markdown syntax, ensuring it's directly compatible with Glow for display. Keep concise. Determine your language according to my question. Please do not use bold or italian. Try not use titles (e.g., #). My question is:
`

// BuildContext wraps a query with its grounding context. With no
// context the query is returned verbatim.
func BuildContext(query, contents string, fromImage bool) string {
	if contents == "" {
		return query
	}
	if fromImage {
		return fmt.Sprintf(imageTemplate, contents, query)
	}
	return fmt.Sprintf(textTemplate, contents, query)
}

// WithInstructions prepends the fixed output-formatting preamble.
func WithInstructions(prompt string) string {
	return instructions + prompt
}

// ChatSystemPrompt seeds the conversation history in chat mode.
const ChatSystemPrompt = "Please give precise and crispy answers. Faster is better."
