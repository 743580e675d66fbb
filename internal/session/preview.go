package session

import (
	"context"
)

const (
	previewTextLimit   = 300
	previewVectorLimit = 10
)

// ChunkPreview is a truncated view of one indexed page and its
// embedding, for the inspection command in the UI.
type ChunkPreview struct {
	ChunkID int       `json:"chunk_id"`
	Text    string    `json:"text"`
	Vector  []float32 `json:"vector"`
}

// PreviewChunks embeds the first n page texts and returns truncated
// text plus the leading vector dimensions. Diagnostic only; it does not
// touch the index or the transcript.
func (s *Session) PreviewChunks(ctx context.Context, n int) ([]ChunkPreview, error) {
	if s.rt == nil {
		return nil, ErrNoDocuments
	}
	if n > len(s.pages) {
		n = len(s.pages)
	}

	previews := make([]ChunkPreview, 0, n)
	for i := 0; i < n; i++ {
		text := s.pages[i].Text
		vec, err := s.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		if len(text) > previewTextLimit {
			text = text[:previewTextLimit] + "..."
		}
		if len(vec) > previewVectorLimit {
			vec = vec[:previewVectorLimit]
		}
		previews = append(previews, ChunkPreview{ChunkID: i + 1, Text: text, Vector: vec})
	}
	return previews, nil
}
