package agent

import (
	"fmt"

	"github.com/askdoc/askdoc/internal/session"
)

// DefaultSystemPrompt is the instruction block used when a session has
// no prompt override.
const DefaultSystemPrompt = `You are a helpful AI assistant with access to document knowledge.
Your role is to answer questions based on the provided context from PDF documents.

Guidelines:
- Always prioritize information from the provided context
- If the context doesn't contain relevant information, clearly state this
- Be concise and accurate in your responses
- If asked about sources, reference the document names mentioned in the context
- Maintain a professional and helpful tone
`

// DefaultHistoryWindow is the number of recent turns included in the
// prompt. It bounds prompt growth independently of the session storage
// cap.
const DefaultHistoryWindow = 6

// Prompt is the fully composed model input.
type Prompt struct {
	System  string
	History []session.Turn
	User    string
}

// Compose builds the model prompt from the session state and the
// current query. It is pure: no I/O, no clock, no store access.
//
// The history window keeps only the most recent turns. A non-empty
// context block wraps the query in an answer-from-context instruction;
// an empty context omits the section entirely and passes the query
// through unchanged.
func Compose(systemPrompt string, history []session.Turn, query, context string, window int) Prompt {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	if len(history) > window {
		history = history[len(history)-window:]
	}

	user := query
	if context != "" {
		user = fmt.Sprintf(`Context from documents:
%s

Question: %s

Please answer the question based on the context provided above.`, context, query)
	}

	return Prompt{
		System:  systemPrompt,
		History: history,
		User:    user,
	}
}
