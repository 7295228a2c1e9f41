package similarity

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/floats"
)

// DefaultChunkChars is the block size used when a text exceeds the
// embedding input budget. Each block is embedded independently and the
// file's representative vector is the mean of the block vectors.
const DefaultChunkChars = 2000

// ErrNoEmbedder is returned when a semantic operation runs without an
// embedding function configured.
var ErrNoEmbedder = errors.New("no embedding function configured")

// EmbedFunc generates a fixed-length vector per input text. The engine
// is agnostic to model choice and dimensionality; any such function
// satisfies the contract.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float64, error)

// Embedder turns texts of arbitrary length into single representative
// vectors via chunking and mean pooling.
type Embedder struct {
	embed      EmbedFunc
	chunkChars int
}

// NewEmbedder wraps an EmbedFunc with the given chunk size.
// A chunkChars of 0 or less uses DefaultChunkChars.
func NewEmbedder(embed EmbedFunc, chunkChars int) *Embedder {
	if chunkChars <= 0 {
		chunkChars = DefaultChunkChars
	}
	return &Embedder{embed: embed, chunkChars: chunkChars}
}

// Vector returns the mean-pooled representative vector for one text.
// This yields a single vector per file regardless of length, so
// similarity comparisons are well-defined across files of different sizes.
func (e *Embedder) Vector(ctx context.Context, text string) ([]float64, error) {
	if e.embed == nil {
		return nil, ErrNoEmbedder
	}
	chunks := chunk(text, e.chunkChars)
	if len(chunks) == 0 {
		return nil, nil
	}
	vectors, err := e.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}
	return meanPool(vectors), nil
}

// chunk splits text into blocks of at most size characters. Splitting
// on rune boundaries keeps every block valid UTF-8 for the embedder.
func chunk(text string, size int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func meanPool(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	mean := make([]float64, dim)
	for _, v := range vectors {
		floats.Add(mean, v)
	}
	floats.Scale(1/float64(len(vectors)), mean)
	return mean
}

// SemanticSimilarity returns the cosine similarity of two representative
// vectors, clamped to [0,1]. Anti-correlation has no meaningful reuse
// interpretation, so negative cosine values floor to 0.
func SemanticSimilarity(vecA, vecB []float64) float64 {
	if len(vecA) == 0 || len(vecB) == 0 || len(vecA) != len(vecB) {
		return 0.0
	}
	normA := floats.Norm(vecA, 2)
	normB := floats.Norm(vecB, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}
	cos := floats.Dot(vecA, vecB) / (normA * normB)
	if cos < 0 {
		return 0.0
	}
	if cos > 1 {
		return 1.0
	}
	return cos
}
