package prompt

import (
	"fmt"

	"slide-rag/internal/models"
)

// Builder assembles the retrieval-augmented prompt. The user name is
// session state, injected by the caller per build so no process-wide
// state leaks across sessions.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// Greeting returns the personalized first line of the prompt.
func (b *Builder) Greeting(name string) string {
	if name == "" {
		return "Halo,"
	}
	return fmt.Sprintf("Halo %s,", name)
}

// Build renders the full prompt: instructions, retrieved document
// context, conversation history and the verbatim question.
func (b *Builder) Build(name, contextText, history, question string) string {
	return fmt.Sprintf(models.PromptTemplate, b.Greeting(name), contextText, history, question)
}
