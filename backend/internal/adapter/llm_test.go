package adapter

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
)

func TestParseJSONArguments(t *testing.T) {
	args, err := parseJSONArguments(`{"source": "alice", "count": 2}`)
	if err != nil {
		t.Fatalf("Expected valid parse, got %v", err)
	}
	if args["source"] != "alice" {
		t.Errorf("Expected source=alice, got %v", args["source"])
	}
	if args["count"] != float64(2) {
		t.Errorf("Expected count=2 as float64, got %T %v", args["count"], args["count"])
	}
}

func TestParseJSONArguments_Empty(t *testing.T) {
	args, err := parseJSONArguments("")
	if err != nil {
		t.Fatalf("Empty arguments must parse to an empty map, got %v", err)
	}
	if len(args) != 0 {
		t.Errorf("Expected empty map, got %v", args)
	}
}

func TestParseJSONArguments_Malformed(t *testing.T) {
	if _, err := parseJSONArguments(`{"source": `); err == nil {
		t.Error("Expected error for malformed JSON")
	}
	if _, err := parseJSONArguments(`["not", "an", "object"]`); err == nil {
		t.Error("Expected error for non-object JSON")
	}
}

func TestNewLLMAdapter_Defaults(t *testing.T) {
	adapter := NewLLMAdapter("", "", "gpt-4o")
	if adapter.Model() != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %q", adapter.Model())
	}
}

func TestNewEmbedder_Dimensions(t *testing.T) {
	embedder := NewEmbedder("", "", "text-embedding-3-small", 1536)
	if embedder.Dimensions() != 1536 {
		t.Errorf("Expected 1536 dims, got %d", embedder.Dimensions())
	}
}

func TestGenerate_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := NewLLMAdapter("http://127.0.0.1:9", "", "gpt-4o")
	_, err := adapter.Generate(ctx, "system", "user", nil)
	if err == nil {
		t.Fatal("Expected error with a canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the context error to surface, got %v", err)
	}
}

func TestEmbed_FailureCarriesEmbeddingType(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedder := NewEmbedder("http://127.0.0.1:9", "", "text-embedding-3-small", 8)
	_, err := embedder.Embed(ctx, "hello")
	if err == nil {
		t.Fatal("Expected error with a canceled context")
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeEmbedding) {
		t.Errorf("Expected an embedding-typed error, got %v", err)
	}
}
