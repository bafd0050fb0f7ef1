package memory

import (
	"context"
	"strings"

	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/adapter"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/graph"
	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
)

// Mock implementations for testing

// mockStore is an in-memory Store that records calls and resolves nodes by
// exact name only.
type mockStore struct {
	nodes     map[string]string // name -> element id, single scope
	relations []graph.Relation

	upserts     []graph.RelationUpsert
	deletions   []graph.Relation
	deleteAlls  []graph.Filters
	neighborRet []graph.Neighbor

	resolveErr error
	upsertErr  error
}

func newMockStore() *mockStore {
	return &mockStore{nodes: map[string]string{}}
}

func (m *mockStore) ResolveNode(ctx context.Context, name string, embedding []float32, filters graph.Filters) (string, bool, error) {
	if m.resolveErr != nil {
		return "", false, m.resolveErr
	}
	id, ok := m.nodes[name]
	return id, ok, nil
}

func (m *mockStore) Neighborhood(ctx context.Context, embedding []float32, filters graph.Filters, limit int) ([]graph.Neighbor, error) {
	if limit < len(m.neighborRet) {
		return m.neighborRet[:limit], nil
	}
	return m.neighborRet, nil
}

func (m *mockStore) UpsertRelation(ctx context.Context, upsert graph.RelationUpsert) (*graph.Relation, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.upserts = append(m.upserts, upsert)
	if upsert.SourceID == "" {
		m.nodes[upsert.Source] = "id-" + upsert.Source
	}
	if upsert.TargetID == "" {
		m.nodes[upsert.Target] = "id-" + upsert.Target
	}
	relation := graph.Relation{
		Source:       upsert.Source,
		Relationship: upsert.Relationship,
		Target:       upsert.Target,
	}
	m.relations = append(m.relations, relation)
	return &relation, nil
}

func (m *mockStore) DeleteRelation(ctx context.Context, source, relationship, target string, filters graph.Filters) ([]graph.Relation, error) {
	var deleted []graph.Relation
	var remaining []graph.Relation
	for _, r := range m.relations {
		if r.Source == source && r.Relationship == relationship && r.Target == target {
			deleted = append(deleted, r)
			continue
		}
		remaining = append(remaining, r)
	}
	m.relations = remaining
	m.deletions = append(m.deletions, deleted...)
	return deleted, nil
}

func (m *mockStore) ListRelations(ctx context.Context, filters graph.Filters, limit int) ([]graph.Relation, error) {
	if limit < len(m.relations) {
		return m.relations[:limit], nil
	}
	return m.relations, nil
}

func (m *mockStore) DeleteAll(ctx context.Context, filters graph.Filters) error {
	if filters.IsZero() {
		return apperrors.ErrUnscopedDelete
	}
	m.deleteAlls = append(m.deleteAlls, filters)
	m.relations = nil
	m.nodes = map[string]string{}
	return nil
}

// mockLLM returns canned tool calls keyed by the tool offered in the request
type mockLLM struct {
	entityCalls   []adapter.ToolCall
	relationCalls []adapter.ToolCall
	deleteCalls   []adapter.ToolCall
	err           error
	generateFunc  func(ctx context.Context, systemPrompt, userMsg string, tools []adapter.Tool) (*adapter.Response, error)
	deletePrompts []string
}

func (m *mockLLM) Generate(ctx context.Context, systemPrompt, userMsg string, tools []adapter.Tool) (*adapter.Response, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, systemPrompt, userMsg, tools)
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(tools) == 0 {
		return &adapter.Response{}, nil
	}
	switch tools[0].Function.Name {
	case toolExtractEntities:
		return &adapter.Response{ToolCalls: m.entityCalls}, nil
	case toolExtractRelations:
		return &adapter.Response{ToolCalls: m.relationCalls}, nil
	case toolDeleteMemory:
		m.deletePrompts = append(m.deletePrompts, userMsg)
		return &adapter.Response{ToolCalls: m.deleteCalls}, nil
	}
	return &adapter.Response{}, nil
}

// mockEmbedder produces a deterministic vector per text
type mockEmbedder struct {
	calls []string
	err   error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, text)
	vec := make([]float32, 4)
	vec[0] = 1
	vec[1] = float32(len(text) % 7)
	return vec, nil
}

// Tool-call builders

func entityCall(pairs ...string) adapter.ToolCall {
	entities := make([]interface{}, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		entities = append(entities, map[string]interface{}{
			"entity":      pairs[i],
			"entity_type": pairs[i+1],
		})
	}
	return adapter.ToolCall{
		Name:      toolExtractEntities,
		Arguments: map[string]interface{}{"entities": entities},
	}
}

func relationCall(triples ...string) adapter.ToolCall {
	entities := make([]interface{}, 0, len(triples))
	for _, triple := range triples {
		parts := strings.SplitN(triple, "|", 3)
		entities = append(entities, map[string]interface{}{
			"source":       parts[0],
			"relationship": parts[1],
			"target":       parts[2],
		})
	}
	return adapter.ToolCall{
		Name:      toolExtractRelations,
		Arguments: map[string]interface{}{"entities": entities},
	}
}

func deleteCall(source, relationship, target string) adapter.ToolCall {
	return adapter.ToolCall{
		Name: toolDeleteMemory,
		Arguments: map[string]interface{}{
			"source":       source,
			"relationship": relationship,
			"target":       target,
		},
	}
}
