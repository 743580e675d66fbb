package router

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"slide-rag/internal/embedding"
	"slide-rag/internal/llmservice"
	"slide-rag/internal/memory"
	"slide-rag/internal/models"
	"slide-rag/internal/prompt"
)

// Retriever is the read side of the vector index.
type Retriever interface {
	TopK(ctx context.Context, queryVector []float32, k int) ([]models.Chunk, error)
}

// Router dispatches each question to the first matching strategy:
// direct slide-number lookup, keyword-to-slide lookup, then the
// retrieval-augmented fallback. The order is a contract: the
// deterministic lookups never invoke the generator and never mutate
// memory, so their results are reproducible and auditable.
type Router struct {
	pages     []models.PageRecord
	retriever Retriever
	embedder  embedding.Embedder
	generator llmservice.Generator
	memory    *memory.Buffer
	prompts   *prompt.Builder
	filenames []string
	topK      int

	slideRe   *regexp.Regexp
	docRe     *regexp.Regexp
	keywordRe *regexp.Regexp

	strategies []strategy
}

// strategy handles a question when its pattern applies. handled=false
// passes the question to the next strategy.
type strategy func(ctx context.Context, question, userName string) (res models.RouteResult, handled bool, err error)

// New builds a router over the session's page records and vector index.
// filenames are the active uploaded filenames, lower-cased, in upload
// order; the first is the default document when a question names none.
// topicKeywords is the finite vocabulary for keyword-to-slide lookup.
func New(
	pages []models.PageRecord,
	retriever Retriever,
	embedder embedding.Embedder,
	generator llmservice.Generator,
	mem *memory.Buffer,
	prompts *prompt.Builder,
	filenames []string,
	topicKeywords []string,
	topK int,
) *Router {
	quoted := make([]string, len(topicKeywords))
	for i, kw := range topicKeywords {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(kw))
	}

	r := &Router{
		pages:     pages,
		retriever: retriever,
		embedder:  embedder,
		generator: generator,
		memory:    mem,
		prompts:   prompts,
		filenames: filenames,
		topK:      topK,
		slideRe:   regexp.MustCompile(models.SlideNumberRegex),
		docRe:     regexp.MustCompile(models.DocumentNameRegex),
		keywordRe: regexp.MustCompile(fmt.Sprintf(models.KeywordQueryRegex, strings.Join(quoted, "|"))),
	}
	r.strategies = []strategy{
		r.slideLookup,
		r.keywordLookup,
		r.generateAnswer,
	}
	return r
}

// Answer routes one question. userName personalizes the generated
// prompt only; it never affects routing. The returned result's Kind
// tells the caller whether to append to history or show a warning.
func (r *Router) Answer(ctx context.Context, question, userName string) (models.RouteResult, error) {
	for _, s := range r.strategies {
		res, handled, err := s(ctx, question, userName)
		if err != nil {
			return models.RouteResult{}, err
		}
		if handled {
			log.Debug().Str("kind", res.Kind.String()).Msg("Question routed")
			return res, nil
		}
	}
	// generateAnswer always handles, so this is unreachable.
	return models.RouteResult{}, fmt.Errorf("no strategy handled question")
}

// slideLookup serves "slide <n>" questions straight from the page
// records, byte-for-byte, without the generator.
func (r *Router) slideLookup(_ context.Context, question, _ string) (models.RouteResult, bool, error) {
	m := r.slideRe.FindStringSubmatch(question)
	if m == nil {
		return models.RouteResult{}, false, nil
	}
	slideNum, err := strconv.Atoi(m[1])
	if err != nil {
		return models.RouteResult{}, false, nil
	}

	guess := r.documentGuess(question)
	if guess == "" {
		return models.RouteResult{}, false, nil
	}

	for _, page := range r.pages {
		if page.SlideNumber == slideNum && strings.Contains(page.Filename, guess) {
			return models.RouteResult{Text: page.Text, Kind: models.RouteSlide}, true, nil
		}
	}
	return models.RouteResult{
		Text: fmt.Sprintf(models.SlideNotFoundTemplate, slideNum, guess),
		Kind: models.RouteNotFound,
	}, true, nil
}

// keywordLookup serves "which slide discusses <topic>" questions for the
// configured topic vocabulary.
func (r *Router) keywordLookup(_ context.Context, question, _ string) (models.RouteResult, bool, error) {
	m := r.keywordRe.FindStringSubmatch(strings.ToLower(question))
	if m == nil {
		return models.RouteResult{}, false, nil
	}
	keyword := m[1]

	// Target document: first page anywhere containing the keyword,
	// else the first active upload.
	guess := ""
	for _, page := range r.pages {
		if strings.Contains(strings.ToLower(page.Text), keyword) {
			guess = page.Filename
			break
		}
	}
	if guess == "" && len(r.filenames) > 0 {
		guess = r.filenames[0]
	}

	// First match in file order then page order; never "most relevant".
	for _, page := range r.pages {
		if strings.Contains(page.Filename, guess) && strings.Contains(strings.ToLower(page.Text), keyword) {
			return models.RouteResult{
				Text: fmt.Sprintf(models.KeywordFoundTemplate, keyword, page.SlideNumber, page.Filename, page.Text),
				Kind: models.RouteKeyword,
			}, true, nil
		}
	}
	return models.RouteResult{
		Text: fmt.Sprintf(models.KeywordNotFoundTemplate, keyword, guess),
		Kind: models.RouteNotFound,
	}, true, nil
}

// generateAnswer is the retrieval-augmented fallback: embed the
// question, retrieve the most similar chunks, prompt the generator with
// context and conversation history, and record the completed turn. The
// only strategy that touches memory.
func (r *Router) generateAnswer(ctx context.Context, question, userName string) (models.RouteResult, bool, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return models.RouteResult{}, false, fmt.Errorf("embedding question: %w", err)
	}

	chunks, err := r.retriever.TopK(ctx, queryVector, r.topK)
	if err != nil {
		return models.RouteResult{}, false, fmt.Errorf("retrieving context: %w", err)
	}

	var contextText strings.Builder
	for _, chunk := range chunks {
		contextText.WriteString(chunk.Text)
		contextText.WriteString("\n\n")
	}

	fullPrompt := r.prompts.Build(userName, contextText.String(), r.memory.AsPromptText(), question)
	answer, err := r.generator.Generate(ctx, fullPrompt)
	if err != nil {
		return models.RouteResult{}, false, fmt.Errorf("generating answer: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		answer = models.EmptyAnswer
	}

	r.memory.Append(models.ConversationTurn{Question: question, Answer: answer})
	return models.RouteResult{Text: answer, Kind: models.RouteRAG}, true, nil
}

// documentGuess resolves which document a question targets: an
// explicitly named one, else the first active upload. The one-file
// default is a documented fallback; with several documents it can pick
// the wrong one when the question names none.
func (r *Router) documentGuess(question string) string {
	if m := r.docRe.FindStringSubmatch(question); m != nil {
		return normalizeDocName(m[1])
	}
	if len(r.filenames) > 0 {
		return r.filenames[0]
	}
	return ""
}

// normalizeDocName lower-cases and strips trailing punctuation and a
// trailing ".pdf" so "Intro.pdf?" matches the stored filename by
// substring.
func normalizeDocName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimRight(name, ".,!?;:")
	name = strings.TrimSuffix(name, ".pdf")
	return name
}
