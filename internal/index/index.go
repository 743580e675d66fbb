package index

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"slide-rag/internal/config"
	"slide-rag/internal/embedding"
	"slide-rag/internal/models"
)

const collectionName = "slide_chunks"

// Index is the session's read-only vector index over all chunks. It is
// built once per upload and never mutated afterward; a failed build
// returns no index at all, so partial state is never queryable.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	count      int
}

// Build chunks every page, embeds all chunks in one batch and stores
// them with provenance metadata. Any embedding failure aborts the build.
func Build(ctx context.Context, pages []models.PageRecord, embedder embedding.Embedder, cfg *config.RAGConfig) (*Index, error) {
	chunks := SplitPages(pages, cfg.ChunkSize, cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced from %d pages", len(pages))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("%s-%d-%d", c.Filename, c.SlideNumber, c.ChunkID),
			Content: c.Text,
			Metadata: map[string]string{
				"filename":     c.Filename,
				"slide_number": strconv.Itoa(c.SlideNumber),
				"chunk_id":     strconv.Itoa(c.ChunkID),
			},
			Embedding: vectors[i],
		}
	}

	log.Info().Msgf("Adding %d chunks to vector index", len(docs))
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}

	return &Index{db: db, collection: collection, count: len(docs)}, nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int { return idx.count }

// TopK returns up to k chunks ordered by descending similarity to the
// query vector.
func (idx *Index) TopK(ctx context.Context, queryVector []float32, k int) ([]models.Chunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid k: %d", k)
	}
	if k > idx.count {
		k = idx.count
	}

	results, err := idx.collection.QueryEmbedding(ctx, queryVector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	chunks := make([]models.Chunk, 0, len(results))
	for _, res := range results {
		slideNum, _ := strconv.Atoi(res.Metadata["slide_number"])
		chunkID, _ := strconv.Atoi(res.Metadata["chunk_id"])
		chunks = append(chunks, models.Chunk{
			Text:        res.Content,
			Filename:    res.Metadata["filename"],
			SlideNumber: slideNum,
			ChunkID:     chunkID,
		})
	}
	return chunks, nil
}
