package graph

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
)

func TestSafeToken(t *testing.T) {
	cases := []struct {
		token    string
		fallback string
		want     string
	}{
		{"works_at", "related_to", "works_at"},
		{"founded", "related_to", "founded"},
		{"person2", "entity", "person2"},
		{"", "entity", "entity"},
		{"Works At", "related_to", "related_to"},
		{"drop;match (n) detach delete n", "related_to", "related_to"},
		{"1starts_with_digit", "entity", "entity"},
	}
	for _, tc := range cases {
		if got := safeToken(tc.token, tc.fallback); got != tc.want {
			t.Errorf("safeToken(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestEmbeddingParam(t *testing.T) {
	got := embeddingParam([]float32{0.5, -1, 2})
	want := []float64{0.5, -1, 2}
	if len(got) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	if sim := CosineSimilarity(a, a); sim != 1 {
		t.Errorf("Identical vectors should score 1, got %v", sim)
	}
	if sim := CosineSimilarity(a, []float32{0, 1, 0}); sim != 0 {
		t.Errorf("Orthogonal vectors should score 0, got %v", sim)
	}
	if sim := CosineSimilarity(a, []float32{-1, 0, 0}); sim != -1 {
		t.Errorf("Opposite vectors should score -1, got %v", sim)
	}
	if sim := CosineSimilarity(a, []float32{0, 0, 0}); sim != 0 {
		t.Errorf("Zero vector should score 0, got %v", sim)
	}
}

// Lowering the threshold is strictly more permissive: anything accepted at
// the resolution threshold is accepted at the discovery threshold.
func TestThresholdMonotonicity(t *testing.T) {
	query := []float32{1, 0.2, 0.1}
	candidates := [][]float32{
		{1, 0.2, 0.1},
		{1, 0.3, 0},
		{0.5, 0.5, 0.5},
		{0, 1, 0},
		{-1, 0, 0},
	}

	for i, candidate := range candidates {
		sim := CosineSimilarity(query, candidate)
		acceptedStrict := sim >= ResolutionThreshold
		acceptedLoose := sim >= DiscoveryThreshold
		if acceptedStrict && !acceptedLoose {
			t.Errorf("Candidate %d accepted at %v but rejected at %v", i, ResolutionThreshold, DiscoveryThreshold)
		}
	}
}

func TestDeleteAll_RejectsUnscoped(t *testing.T) {
	// The rejection happens before any session is opened, so a repository
	// without a live driver is enough to verify the store stays untouched.
	repo := NewRepository(nil)

	err := repo.DeleteAll(context.Background(), Filters{})
	if err == nil {
		t.Fatal("Expected unscoped delete to be rejected")
	}
	if !errors.Is(err, apperrors.ErrUnscopedDelete) {
		t.Errorf("Expected ErrUnscopedDelete, got %v", err)
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeConfig) {
		t.Errorf("Expected a config error, got %v", err)
	}
}
