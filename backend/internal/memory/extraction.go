package memory

import (
	"context"

	"go.uber.org/zap"

	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/adapter"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/graph"
)

// ============================================================================
// Extraction Passes
// ============================================================================

// Outcome classifies an extraction pass. A failed or empty pass never aborts
// the pipeline: the caller continues with empty sets.
type Outcome int

const (
	// OutcomeOK means the pass produced results
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the pass ran but found nothing
	OutcomeEmpty
	// OutcomeFailed means the LLM call errored or returned malformed output
	OutcomeFailed
)

// EntityResult is the outcome of the entity typing pass
type EntityResult struct {
	Outcome Outcome
	Err     error
	// Types maps normalized entity name to normalized entity type
	Types map[string]string
}

// Names returns the extracted entity names
func (r EntityResult) Names() []string {
	names := make([]string, 0, len(r.Types))
	for name := range r.Types {
		names = append(names, name)
	}
	return names
}

// RelationResult is the outcome of the relation extraction pass
type RelationResult struct {
	Outcome   Outcome
	Err       error
	Relations []graph.Relation
}

// retrieveEntities runs the entity typing pass over the text
func (e *Engine) retrieveEntities(ctx context.Context, text string, filters graph.Filters) EntityResult {
	resp, err := e.llm.Generate(ctx,
		entitySystemPrompt(filters.UserID),
		text,
		[]adapter.Tool{e.tools.extractEntities},
	)
	if err != nil {
		e.logger.Error("Entity extraction failed", zap.Error(err))
		return EntityResult{Outcome: OutcomeFailed, Err: err, Types: map[string]string{}}
	}

	types := make(map[string]string)
	for _, call := range resp.ToolCalls {
		if call.Name != toolExtractEntities {
			continue
		}
		for _, item := range argumentList(call.Arguments, "entities") {
			name := Normalize(stringArg(item, "entity"))
			entityType := Normalize(stringArg(item, "entity_type"))
			if name != "" {
				types[name] = entityType
			}
		}
	}

	if len(types) == 0 {
		return EntityResult{Outcome: OutcomeEmpty, Types: types}
	}

	e.logger.Debug("Entities extracted", zap.Int("count", len(types)))
	return EntityResult{Outcome: OutcomeOK, Types: types}
}

// extractRelations runs the relation pass, biased by the entity list
func (e *Engine) extractRelations(ctx context.Context, text string, entities []string, filters graph.Filters) RelationResult {
	resp, err := e.llm.Generate(ctx,
		relationSystemPrompt(filters.UserID),
		relationUserPrompt(text, entities),
		[]adapter.Tool{e.tools.extractRelations},
	)
	if err != nil {
		e.logger.Error("Relation extraction failed", zap.Error(err))
		return RelationResult{Outcome: OutcomeFailed, Err: err}
	}

	var relations []graph.Relation
	for _, call := range resp.ToolCalls {
		if call.Name != toolExtractRelations {
			continue
		}
		for _, item := range argumentList(call.Arguments, "entities") {
			relation := graph.Relation{
				Source:       Normalize(stringArg(item, "source")),
				Relationship: Normalize(stringArg(item, "relationship")),
				Target:       Normalize(stringArg(item, "target")),
			}
			if relation.Source != "" && relation.Relationship != "" && relation.Target != "" {
				relations = append(relations, relation)
			}
		}
	}

	if len(relations) == 0 {
		return RelationResult{Outcome: OutcomeEmpty}
	}

	e.logger.Debug("Relations extracted", zap.Int("count", len(relations)))
	return RelationResult{Outcome: OutcomeOK, Relations: relations}
}

// detectContradictions asks the model which of the discovered edges the new
// text contradicts or supersedes. The model may only reference edges by the
// triples it was shown; resolution back to concrete edges is exact-match.
func (e *Engine) detectContradictions(ctx context.Context, neighborhood []graph.Neighbor, text string, filters graph.Filters) RelationResult {
	if len(neighborhood) == 0 {
		return RelationResult{Outcome: OutcomeEmpty}
	}

	resp, err := e.llm.Generate(ctx,
		deleteSystemPrompt(filters.UserID),
		deleteUserPrompt(neighborhood, text),
		[]adapter.Tool{e.tools.deleteMemory},
	)
	if err != nil {
		e.logger.Error("Contradiction detection failed", zap.Error(err))
		return RelationResult{Outcome: OutcomeFailed, Err: err}
	}

	var relations []graph.Relation
	for _, call := range resp.ToolCalls {
		if call.Name != toolDeleteMemory {
			continue
		}
		relation := graph.Relation{
			Source:       Normalize(stringArg(call.Arguments, "source")),
			Relationship: Normalize(stringArg(call.Arguments, "relationship")),
			Target:       Normalize(stringArg(call.Arguments, "target")),
		}
		if relation.Source != "" && relation.Relationship != "" && relation.Target != "" {
			relations = append(relations, relation)
		}
	}

	if len(relations) == 0 {
		return RelationResult{Outcome: OutcomeEmpty}
	}

	e.logger.Debug("Contradicted relations detected", zap.Int("count", len(relations)))
	return RelationResult{Outcome: OutcomeOK, Relations: relations}
}

// Tool-call argument helpers

func argumentList(args map[string]interface{}, key string) []map[string]interface{} {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	items := make([]map[string]interface{}, 0, len(raw))
	for _, entry := range raw {
		if item, ok := entry.(map[string]interface{}); ok {
			items = append(items, item)
		}
	}
	return items
}

func stringArg(args map[string]interface{}, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}
