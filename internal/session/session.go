package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"slide-rag/internal/config"
	"slide-rag/internal/embedding"
	"slide-rag/internal/index"
	"slide-rag/internal/llmservice"
	"slide-rag/internal/memory"
	"slide-rag/internal/models"
	"slide-rag/internal/parser"
	"slide-rag/internal/prompt"
	"slide-rag/internal/router"
	"slide-rag/internal/safety"
)

var (
	// ErrTooManyFiles rejects an upload batch before ingestion begins.
	ErrTooManyFiles = errors.New("too many files uploaded")
	// ErrNoDocuments means Ask was called before a successful upload.
	ErrNoDocuments = errors.New("no documents uploaded")
)

// Session owns one conversation's state: page records, vector index,
// transcript, detected user name and display history. All mutation is
// sequential; each session owns independent state, nothing is shared
// across sessions. Not safe for concurrent use.
type Session struct {
	cfg       *config.Config
	extractor parser.PageExtractor
	embedder  embedding.Embedder
	generator llmservice.Generator
	prompts   *prompt.Builder
	filter    *safety.Filter

	pages     []models.PageRecord
	filenames []string
	idx       *index.Index
	rt        *router.Router
	memory    *memory.Buffer
	history   []models.ConversationTurn
	selected  int
	userName  string
}

// New creates an idle session; Upload must succeed before Ask works.
func New(cfg *config.Config, extractor parser.PageExtractor, embedder embedding.Embedder, generator llmservice.Generator) *Session {
	return &Session{
		cfg:       cfg,
		extractor: extractor,
		embedder:  embedder,
		generator: generator,
		prompts:   prompt.NewBuilder(),
		filter:    safety.NewFilter(cfg.Safety.ToxicWords),
		selected:  -1,
	}
}

// Upload ingests the files and builds the vector index as one unit.
// More than MaxFiles is rejected before ingestion starts. On any
// failure the session keeps its previous state; partial index state is
// never exposed.
func (s *Session) Upload(ctx context.Context, files []parser.UploadedFile) error {
	if len(files) > s.cfg.RAG.MaxFiles {
		return fmt.Errorf("%w: %d files, limit %d", ErrTooManyFiles, len(files), s.cfg.RAG.MaxFiles)
	}
	if len(files) == 0 {
		return errors.New("no files provided")
	}

	pages, err := parser.LoadDocuments(files, s.extractor)
	if err != nil {
		return err
	}

	idx, err := index.Build(ctx, pages, s.embedder, &s.cfg.RAG)
	if err != nil {
		return err
	}

	filenames := make([]string, len(files))
	for i, f := range files {
		filenames[i] = strings.ToLower(f.Name)
	}

	s.pages = pages
	s.filenames = filenames
	s.idx = idx
	s.memory = memory.NewBuffer(s.cfg.RAG.HistoryWindow)
	s.rt = router.New(pages, idx, s.embedder, s.generator, s.memory, s.prompts,
		filenames, s.cfg.Router.TopicKeywords, s.cfg.RAG.TopK)
	s.history = nil
	s.selected = -1

	log.Info().Int("files", len(files)).Int("pages", len(pages)).Int("chunks", idx.Len()).
		Msg("Documents indexed")
	return nil
}

// Ready reports whether documents have been uploaded and indexed.
func (s *Session) Ready() bool { return s.rt != nil }

// Ask runs one question through name detection, the safety filter and
// the router. Warning results (toxic input, failed deterministic
// lookups) are returned to the caller but never appended to the display
// history or the transcript.
func (s *Session) Ask(ctx context.Context, question string) (models.RouteResult, error) {
	if s.rt == nil {
		return models.RouteResult{}, ErrNoDocuments
	}

	// Name detection is a side effect only; it never affects routing.
	s.userName = s.filter.DetectName(question, s.userName)

	if s.filter.IsToxic(question) {
		log.Warn().Msg("Question rejected by safety filter")
		return models.RouteResult{Text: models.ToxicWarning, Kind: models.RouteRejected}, nil
	}

	res, err := s.rt.Answer(ctx, question, s.userName)
	if err != nil {
		return models.RouteResult{}, err
	}

	if !res.Kind.IsWarning() {
		s.history = append(s.history, models.ConversationTurn{Question: question, Answer: res.Text})
		s.selected = -1
	}
	return res, nil
}

// History returns the display history in chronological order.
func (s *Session) History() []models.ConversationTurn {
	out := make([]models.ConversationTurn, len(s.history))
	copy(out, s.history)
	return out
}

// Select marks a past turn for re-display.
func (s *Session) Select(i int) error {
	if i < 0 || i >= len(s.history) {
		return fmt.Errorf("no history entry %d", i)
	}
	s.selected = i
	return nil
}

// Selected returns the currently selected turn, if any.
func (s *Session) Selected() (models.ConversationTurn, bool) {
	if s.selected < 0 || s.selected >= len(s.history) {
		return models.ConversationTurn{}, false
	}
	return s.history[s.selected], true
}

// UserName returns the currently detected user name, if any.
func (s *Session) UserName() string { return s.userName }

// Filenames returns the active uploaded filenames in upload order.
func (s *Session) Filenames() []string {
	out := make([]string, len(s.filenames))
	copy(out, s.filenames)
	return out
}

// SoftReset clears the transcript, display history and selected turn
// but keeps the built index and page records.
func (s *Session) SoftReset() {
	if s.memory != nil {
		s.memory.Clear()
	}
	s.history = nil
	s.selected = -1
}

// HardReset returns the session to the pre-ingestion idle state:
// index, pages, transcript, history and detected name are all dropped.
func (s *Session) HardReset() {
	s.pages = nil
	s.filenames = nil
	s.idx = nil
	s.rt = nil
	s.memory = nil
	s.history = nil
	s.selected = -1
	s.userName = ""
}
