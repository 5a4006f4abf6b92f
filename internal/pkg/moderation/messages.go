package moderation

import (
	"encoding/json"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn as sent by the browser. Content is either a plain
// string or a list of typed parts (vision requests).
type Message struct {
	Role    string          `json:"role" validate:"required,oneof=system user assistant"`
	Content json.RawMessage `json:"content" validate:"required"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LastUserText returns the text of the most recent user message. Only that
// message is moderated: system prompts are ours and assistant turns are the
// model's own output.
func LastUserText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return contentText(messages[i].Content)
		}
	}
	return ""
}

func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var texts []string
	for _, p := range parts {
		if p.Type == "text" && strings.TrimSpace(p.Text) != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}
