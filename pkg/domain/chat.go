package domain

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string
	Content string
}

const (
	ModelChat     = "deepseek-chat"
	ModelReasoner = "deepseek-reasoner"
)

// SelectModel maps the -d flag to a model identifier.
func SelectModel(deep bool) string {
	if deep {
		return ModelReasoner
	}
	return ModelChat
}
