package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"slide-rag/internal/config"
	"slide-rag/internal/models"
	"slide-rag/internal/parser"
)

type fakeExtractor struct{}

// One page per line of the file body.
func (fakeExtractor) ExtractPages(data []byte) ([]string, error) {
	if string(data) == "corrupt" {
		return nil, errors.New("not a PDF")
	}
	return strings.Split(string(data), "\n"), nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type fakeGenerator struct {
	answer string
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.answer, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.RAG.ChunkSize = 50
	cfg.RAG.ChunkOverlap = 10
	return cfg
}

func newTestSession(t *testing.T) (*Session, *fakeGenerator) {
	t.Helper()
	gen := &fakeGenerator{answer: "jawaban"}
	sess := New(testConfig(), fakeExtractor{}, &fakeEmbedder{}, gen)

	files := []parser.UploadedFile{
		{Name: "intro.pdf", Data: []byte("materi pembuka\nmateri tentang mou\nmateri penutup")},
	}
	if err := sess.Upload(context.Background(), files); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	return sess, gen
}

func TestUpload_RejectsTooManyFiles(t *testing.T) {
	sess := New(testConfig(), fakeExtractor{}, &fakeEmbedder{}, &fakeGenerator{})

	files := make([]parser.UploadedFile, 6)
	for i := range files {
		files[i] = parser.UploadedFile{Name: fmt.Sprintf("f%d.pdf", i), Data: []byte("p")}
	}

	err := sess.Upload(context.Background(), files)
	if !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("Upload(6 files) error = %v, want ErrTooManyFiles", err)
	}
	if sess.Ready() {
		t.Error("session must stay idle after a rejected upload")
	}
}

func TestUpload_ExtractionFailureKeepsPreviousState(t *testing.T) {
	sess, _ := newTestSession(t)

	err := sess.Upload(context.Background(), []parser.UploadedFile{
		{Name: "bad.pdf", Data: []byte("corrupt")},
	})
	var extractionErr *parser.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Upload() error = %v, want *parser.ExtractionError", err)
	}

	// Previous document set still queryable.
	res, err := sess.Ask(context.Background(), "slide 1")
	if err != nil {
		t.Fatalf("Ask() after failed re-upload error = %v", err)
	}
	if res.Kind != models.RouteSlide {
		t.Errorf("Kind = %s, want slide", res.Kind)
	}
}

func TestAsk_BeforeUpload(t *testing.T) {
	sess := New(testConfig(), fakeExtractor{}, &fakeEmbedder{}, &fakeGenerator{})
	if _, err := sess.Ask(context.Background(), "halo"); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("Ask() error = %v, want ErrNoDocuments", err)
	}
}

func TestAsk_ToxicQuestionNeverReachesRouter(t *testing.T) {
	sess, gen := newTestSession(t)

	res, err := sess.Ask(context.Background(), "dasar goblok")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if res.Kind != models.RouteRejected {
		t.Fatalf("Kind = %s, want rejected", res.Kind)
	}
	if res.Text != models.ToxicWarning {
		t.Errorf("Text = %q, want %q", res.Text, models.ToxicWarning)
	}
	if gen.calls != 0 {
		t.Error("generator must not be invoked for a rejected question")
	}
	if len(sess.History()) != 0 {
		t.Error("rejected question must not enter the history")
	}
}

func TestAsk_NotFoundIsWarningNotHistory(t *testing.T) {
	sess, _ := newTestSession(t)

	res, err := sess.Ask(context.Background(), "slide ke 99")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if res.Kind != models.RouteNotFound {
		t.Fatalf("Kind = %s, want not_found", res.Kind)
	}
	if !res.Kind.IsWarning() {
		t.Error("not-found result must be flagged as a warning")
	}
	if len(sess.History()) != 0 {
		t.Error("not-found result must not enter the history")
	}
}

func TestAsk_AnswersEnterHistory(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	if _, err := sess.Ask(ctx, "slide 2"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if _, err := sess.Ask(ctx, "apa kesimpulannya?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	history := sess.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Question != "slide 2" || history[1].Question != "apa kesimpulannya?" {
		t.Errorf("history order wrong: %+v", history)
	}
}

func TestAsk_NameDetectionIsSideEffectOnly(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	// A slide question that also introduces a name: still routed as a
	// slide lookup, but the name sticks.
	res, err := sess.Ask(ctx, "nama saya Budi, tampilkan slide 1")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if res.Kind != models.RouteSlide {
		t.Errorf("Kind = %s, want slide (name detection must not affect routing)", res.Kind)
	}
	if sess.UserName() != "Budi" {
		t.Errorf("UserName() = %q, want Budi", sess.UserName())
	}

	if _, err := sess.Ask(ctx, "slide 2"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if sess.UserName() != "Budi" {
		t.Error("detected name must be sticky across non-matching inputs")
	}
}

func TestSelect(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	if _, err := sess.Ask(ctx, "slide 1"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if err := sess.Select(0); err != nil {
		t.Fatalf("Select(0) error = %v", err)
	}
	if sel, ok := sess.Selected(); !ok || sel.Question != "slide 1" {
		t.Errorf("Selected() = %+v, %v", sel, ok)
	}
	if err := sess.Select(5); err == nil {
		t.Error("Select(out of range) should error")
	}

	// A new answered question clears the selection.
	if _, err := sess.Ask(ctx, "slide 2"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if _, ok := sess.Selected(); ok {
		t.Error("selection must be cleared after a new answer")
	}
}

func TestSoftReset_KeepsIndex(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	if _, err := sess.Ask(ctx, "apa isi dokumen?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	sess.SoftReset()

	if len(sess.History()) != 0 {
		t.Error("soft reset must clear history")
	}
	if !sess.Ready() {
		t.Error("soft reset must preserve the built index")
	}
	if _, err := sess.Ask(ctx, "slide 1"); err != nil {
		t.Errorf("Ask() after soft reset error = %v", err)
	}
}

func TestHardReset_ReturnsToIdle(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	if _, err := sess.Ask(ctx, "nama saya Budi, apa isi dokumen?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	sess.HardReset()

	if sess.Ready() {
		t.Error("hard reset must drop the index")
	}
	if sess.UserName() != "" {
		t.Error("hard reset must drop the detected name")
	}
	if len(sess.Filenames()) != 0 {
		t.Error("hard reset must drop the uploaded file references")
	}
	if _, err := sess.Ask(ctx, "halo"); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("Ask() after hard reset error = %v, want ErrNoDocuments", err)
	}
}

func TestPreviewChunks(t *testing.T) {
	sess, _ := newTestSession(t)

	previews, err := sess.PreviewChunks(context.Background(), 2)
	if err != nil {
		t.Fatalf("PreviewChunks() error = %v", err)
	}
	if len(previews) != 2 {
		t.Fatalf("got %d previews, want 2", len(previews))
	}
	if previews[0].ChunkID != 1 || previews[1].ChunkID != 2 {
		t.Errorf("preview ids = %d, %d", previews[0].ChunkID, previews[1].ChunkID)
	}
	if len(previews[0].Vector) == 0 {
		t.Error("preview must include vector dimensions")
	}
}
