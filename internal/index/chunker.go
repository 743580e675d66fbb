package index

import (
	"slide-rag/internal/models"
)

// SplitPage splits one page's text into consecutive chunks of size bytes
// with overlap bytes repeated between neighbors. The last chunk may be
// shorter. For a page of length L this yields ceil((L-overlap)/(size-overlap))
// chunks (one when L <= size). Chunks never cross a page boundary.
func SplitPage(page models.PageRecord, size, overlap int) []models.Chunk {
	if size <= 0 || len(page.Text) == 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []models.Chunk
	text := page.Text
	step := size - overlap
	chunkID := 1
	for start := 0; ; start += step {
		end := min(start+size, len(text))
		chunks = append(chunks, models.Chunk{
			Text:        text[start:end],
			Filename:    page.Filename,
			SlideNumber: page.SlideNumber,
			ChunkID:     chunkID,
		})
		if end == len(text) {
			break
		}
		chunkID++
	}
	return chunks
}

// SplitPages chunks every page in order, preserving file order then page
// order.
func SplitPages(pages []models.PageRecord, size, overlap int) []models.Chunk {
	var chunks []models.Chunk
	for _, page := range pages {
		chunks = append(chunks, SplitPage(page, size, overlap)...)
	}
	return chunks
}
