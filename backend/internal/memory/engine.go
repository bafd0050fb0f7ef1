// Package memory implements the graph-backed fact memory engine: it
// extracts entities and relationships from text, resolves them against a
// tenant-scoped Neo4j graph by embedding similarity, repairs contradictions
// by deleting superseded edges, and merges or creates nodes and edges.
package memory

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/adapter"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/graph"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/rerank"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/logger"
)

// Store is the graph repository surface the engine depends on
type Store interface {
	ResolveNode(ctx context.Context, name string, embedding []float32, filters graph.Filters) (string, bool, error)
	Neighborhood(ctx context.Context, embedding []float32, filters graph.Filters, limit int) ([]graph.Neighbor, error)
	UpsertRelation(ctx context.Context, upsert graph.RelationUpsert) (*graph.Relation, error)
	DeleteRelation(ctx context.Context, source, relationship, target string, filters graph.Filters) ([]graph.Relation, error)
	ListRelations(ctx context.Context, filters graph.Filters, limit int) ([]graph.Relation, error)
	DeleteAll(ctx context.Context, filters graph.Filters) error
}

// Generator is the tool-call LLM surface the engine depends on
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMsg string, tools []adapter.Tool) (*adapter.Response, error)
}

// TextEmbedder turns text into a fixed-length vector
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DefaultLimit caps neighborhood discovery and bulk reads per call
const DefaultLimit = 100

// Engine orchestrates extraction, resolution, contradiction repair and
// mutation. It holds no tenancy state; filters are threaded per call.
type Engine struct {
	store    Store
	llm      Generator
	embedder TextEmbedder
	tools    toolSet
	logger   *zap.Logger
}

// NewEngine creates a new memory engine
func NewEngine(store Store, llm Generator, embedder TextEmbedder, style ToolStyle) *Engine {
	return &Engine{
		store:    store,
		llm:      llm,
		embedder: embedder,
		tools:    newToolSet(style),
		logger:   logger.Get(),
	}
}

// AddResult reports what an Add call changed
type AddResult struct {
	Added   []graph.Relation `json:"added"`
	Deleted []graph.Relation `json:"deleted"`
}

// Add ingests unstructured text: extracts entities and relations, deletes
// edges the text contradicts, and merges or creates nodes and edges under
// the given tenancy scope.
func (e *Engine) Add(ctx context.Context, text string, filters graph.Filters) (*AddResult, error) {
	entities := e.retrieveEntities(ctx, text, filters)
	relations := e.extractRelations(ctx, text, entities.Names(), filters)

	neighborhood, err := e.discoverNeighborhood(ctx, entities.Names(), filters, DefaultLimit)
	if err != nil {
		return nil, err
	}

	contradictions := e.detectContradictions(ctx, neighborhood, text, filters)

	result := &AddResult{
		Added:   []graph.Relation{},
		Deleted: []graph.Relation{},
	}

	for _, relation := range contradictions.Relations {
		deleted, err := e.store.DeleteRelation(ctx, relation.Source, relation.Relationship, relation.Target, filters)
		if err != nil {
			return nil, err
		}
		result.Deleted = append(result.Deleted, deleted...)
	}

	for _, relation := range relations.Relations {
		added, err := e.addRelation(ctx, relation, entities.Types, filters)
		if err != nil {
			return nil, err
		}
		result.Added = append(result.Added, *added)
	}

	e.logger.Info("Memory added",
		zap.Int("added", len(result.Added)),
		zap.Int("deleted", len(result.Deleted)),
		zap.String("user_id", filters.UserID),
		zap.String("agent_id", filters.AgentID),
		zap.String("run_id", filters.RunID),
	)
	return result, nil
}

// addRelation resolves both endpoints of one triple and runs the matching
// merge branch. Source and target resolution are independent, so they run
// in parallel; the upsert still observes this triple's own results.
func (e *Engine) addRelation(ctx context.Context, relation graph.Relation, types map[string]string, filters graph.Filters) (*graph.Relation, error) {
	upsert := graph.RelationUpsert{
		Source:       relation.Source,
		SourceType:   types[relation.Source],
		Target:       relation.Target,
		TargetType:   types[relation.Target],
		Relationship: relation.Relationship,
		Filters:      filters,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		embedding, err := e.embedder.Embed(gctx, relation.Source)
		if err != nil {
			return err
		}
		id, found, err := e.store.ResolveNode(gctx, relation.Source, embedding, filters)
		if err != nil {
			return err
		}
		upsert.SourceEmbedding = embedding
		if found {
			upsert.SourceID = id
		}
		return nil
	})
	g.Go(func() error {
		embedding, err := e.embedder.Embed(gctx, relation.Target)
		if err != nil {
			return err
		}
		id, found, err := e.store.ResolveNode(gctx, relation.Target, embedding, filters)
		if err != nil {
			return err
		}
		upsert.TargetEmbedding = embedding
		if found {
			upsert.TargetID = id
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return e.store.UpsertRelation(ctx, upsert)
}

// discoverNeighborhood embeds each entity name and collects the
// bidirectional 1-hop edges around every candidate node. Results are
// concatenated across entities, not deduplicated.
func (e *Engine) discoverNeighborhood(ctx context.Context, names []string, filters graph.Filters, limit int) ([]graph.Neighbor, error) {
	var neighborhood []graph.Neighbor
	for _, name := range names {
		embedding, err := e.embedder.Embed(ctx, name)
		if err != nil {
			return nil, err
		}
		neighbors, err := e.store.Neighborhood(ctx, embedding, filters, limit)
		if err != nil {
			return nil, err
		}
		neighborhood = append(neighborhood, neighbors...)
	}
	return neighborhood, nil
}

// Search finds triples related to the query: entity extraction over the
// query, neighborhood discovery, then lexical reranking against the raw
// query text. Reranking reorders the discovery results without truncating
// them further.
func (e *Engine) Search(ctx context.Context, query string, filters graph.Filters, limit int) ([]graph.Relation, error) {
	if limit < 1 {
		limit = DefaultLimit
	}

	entities := e.retrieveEntities(ctx, query, filters)

	neighborhood, err := e.discoverNeighborhood(ctx, entities.Names(), filters, limit)
	if err != nil {
		return nil, err
	}
	if len(neighborhood) == 0 {
		return []graph.Relation{}, nil
	}

	corpus := make([][]string, len(neighborhood))
	for i, n := range neighborhood {
		corpus[i] = []string{n.Source, n.Relationship, n.Target}
	}

	bm := rerank.New(corpus)
	order := bm.TopN(rerank.Tokenize(query), len(corpus))

	results := make([]graph.Relation, 0, len(order))
	for _, idx := range order {
		n := neighborhood[idx]
		results = append(results, graph.Relation{
			Source:       n.Source,
			Relationship: n.Relationship,
			Target:       n.Target,
		})
	}

	e.logger.Info("Search completed",
		zap.Int("results", len(results)),
		zap.String("user_id", filters.UserID),
	)
	return results, nil
}

// GetAll returns up to limit triples in the tenancy scope, unranked
func (e *Engine) GetAll(ctx context.Context, filters graph.Filters, limit int) ([]graph.Relation, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	relations, err := e.store.ListRelations(ctx, filters, limit)
	if err != nil {
		return nil, err
	}
	if relations == nil {
		relations = []graph.Relation{}
	}
	return relations, nil
}

// DeleteAll removes every node and edge in the tenancy scope. Rejected
// before touching the store when no tenancy field is supplied.
func (e *Engine) DeleteAll(ctx context.Context, filters graph.Filters) error {
	return e.store.DeleteAll(ctx, filters)
}
