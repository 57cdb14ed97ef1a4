package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// FirstConversation is what the model is told when a wallet has no stored turn
	FirstConversation = "not there. This is your first conversation."
	// NoConversation is shown in listings for wallets without a stored turn
	NoConversation = "No conversations yet"

	questionPrefix  = "Question:"
	answerSeparator = ",answer: "
)

// Turn is one question/answer pair. Raw holds text that could not be split.
type Turn struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Raw      string `json:"raw,omitempty"`
}

// FormatTurn renders a turn the way it is persisted
func FormatTurn(prompt, response string) string {
	return fmt.Sprintf("%s%s%s%s", questionPrefix, prompt, answerSeparator, response)
}

// ParseConversation turns a stored conversation string into turns. A JSON
// array is decoded as a list of turns; anything else is split on the first
// answer separator.
func ParseConversation(stored string) []Turn {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return nil
	}
	if strings.HasPrefix(stored, "[") && strings.HasSuffix(stored, "]") {
		var turns []Turn
		if err := json.Unmarshal([]byte(stored), &turns); err == nil {
			return turns
		}
		return nil
	}
	if !strings.Contains(stored, questionPrefix) {
		return nil
	}
	question, answer, ok := strings.Cut(stored, answerSeparator)
	if !ok {
		return []Turn{{Raw: stored}}
	}
	return []Turn{{
		Question: strings.TrimSpace(strings.Replace(question, questionPrefix, "", 1)),
		Answer:   strings.TrimSpace(answer),
	}}
}
