package adapter

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/logger"
)

// Embedder turns text into fixed-length vectors via the embeddings endpoint.
// Dimensionality is fixed per deployment; all similarity comparisons assume
// equal-length vectors.
type Embedder struct {
	client *openai.Client
	model  string
	dims   int
	logger *zap.Logger
}

// NewEmbedder creates a new embedding client
func NewEmbedder(baseURL, apiKey, model string, dims int) *Embedder {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Embedder{
		client: openai.NewClientWithConfig(config),
		model:  model,
		dims:   dims,
		logger: logger.Get(),
	}
}

// Dimensions returns the configured embedding dimensionality
func (e *Embedder) Dimensions() int {
	return e.dims
}

// Embed returns the embedding vector for a single text
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(e.model),
		Input:      []string{text},
		Dimensions: e.dims,
	})
	if err != nil {
		return nil, apperrors.NewEmbeddingFailed(e.model, err)
	}

	if len(resp.Data) == 0 {
		return nil, apperrors.NewEmbeddingFailed(e.model, fmt.Errorf("no embedding data in response"))
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != e.dims {
		return nil, apperrors.NewEmbeddingFailed(e.model,
			fmt.Errorf("unexpected embedding dimensionality: got %d, want %d", len(embedding), e.dims))
	}

	e.logger.Debug("Text embedded",
		zap.String("model", e.model),
		zap.Int("dims", len(embedding)),
	)
	return embedding, nil
}
