package models

// PageRecord is one page of an uploaded PDF, the atomic unit for direct
// slide lookup. Text carries the synthesized slide header so identity
// survives chunking.
type PageRecord struct {
	Text        string
	SlideNumber int // 1-based within the source file
	Filename    string
}

// Chunk is a sub-page text fragment used for vector similarity search.
type Chunk struct {
	Text        string
	Filename    string
	SlideNumber int
	ChunkID     int
}

// ChunkEmbedding pairs a chunk with its embedding vector.
type ChunkEmbedding struct {
	Chunk
	Embedding []float32
}

// ConversationTurn is one completed question/answer exchange.
type ConversationTurn struct {
	Question string
	Answer   string
}

// RouteKind identifies which router strategy produced a result.
type RouteKind int

const (
	// RouteSlide is a deterministic slide-number lookup hit.
	RouteSlide RouteKind = iota
	// RouteKeyword is a deterministic keyword-to-slide lookup hit.
	RouteKeyword
	// RouteRAG is a generated answer from the retrieval pipeline.
	RouteRAG
	// RouteNotFound is the sentinel outcome of a failed deterministic
	// lookup. Surfaced as a warning, never recorded as a turn.
	RouteNotFound
	// RouteRejected means the safety filter stopped the question before
	// it reached the router.
	RouteRejected
)

func (k RouteKind) String() string {
	switch k {
	case RouteSlide:
		return "slide"
	case RouteKeyword:
		return "keyword"
	case RouteRAG:
		return "rag"
	case RouteNotFound:
		return "not_found"
	case RouteRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// IsWarning reports whether the result must be shown as a warning instead
// of being appended to the chat history.
func (k RouteKind) IsWarning() bool {
	return k == RouteNotFound || k == RouteRejected
}

// RouteResult is the outcome of routing one question.
type RouteResult struct {
	Text string
	Kind RouteKind
}
