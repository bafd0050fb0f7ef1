package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
)

// ============================================================================
// Node Resolution
// ============================================================================

// ResolveNode maps a normalized entity name to an existing node under the
// given tenancy scope. Resolution is two-stage: an exact name match first,
// then the best embedding match at or above ResolutionThreshold. A miss is
// not an error; it signals "create a new node".
func (r *Repository) ResolveNode(ctx context.Context, name string, embedding []float32, filters Filters) (string, bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	id, found, err := r.resolveByName(ctx, session, name, filters)
	if err != nil {
		return "", false, err
	}
	if found {
		r.logger.Debug("Node resolved by exact name",
			zap.String("name", name),
			zap.String("node_id", id),
		)
		return id, true, nil
	}

	return r.resolveByEmbedding(ctx, session, name, embedding, filters)
}

func (r *Repository) resolveByName(ctx context.Context, session neo4j.SessionWithContext, name string, filters Filters) (string, bool, error) {
	query := fmt.Sprintf(`
		MATCH (candidate)
		WHERE %s
		RETURN elementId(candidate) AS node_id
		LIMIT 1
	`, filters.Clause("candidate", "candidate.name = $name"))

	params := mergeParams(map[string]interface{}{"name": name}, filters.Params())

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return "", false, apperrors.NewGraphQueryFailed("resolve node by name", err)
	}
	if result.Next(ctx) {
		return getStringFromRecord(result.Record(), "node_id"), true, nil
	}
	if err := result.Err(); err != nil {
		return "", false, apperrors.NewGraphQueryFailed("resolve node by name", err)
	}
	return "", false, nil
}

func (r *Repository) resolveByEmbedding(ctx context.Context, session neo4j.SessionWithContext, name string, embedding []float32, filters Filters) (string, bool, error) {
	query := fmt.Sprintf(`
		MATCH (candidate)
		WHERE candidate.embedding IS NOT NULL
		  AND %s
		WITH candidate, %s AS similarity
		WHERE similarity >= $threshold
		ORDER BY similarity DESC
		LIMIT 1
		RETURN elementId(candidate) AS node_id, similarity
	`, filters.Clause("candidate"), similarityExpr("candidate"))

	params := mergeParams(map[string]interface{}{
		"embedding": embeddingParam(embedding),
		"threshold": ResolutionThreshold,
	}, filters.Params())

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return "", false, apperrors.NewGraphQueryFailed("resolve node by embedding", err)
	}
	if result.Next(ctx) {
		record := result.Record()
		id := getStringFromRecord(record, "node_id")
		r.logger.Debug("Node resolved by embedding",
			zap.String("name", name),
			zap.String("node_id", id),
			zap.Float64("similarity", getFloat64FromRecord(record, "similarity")),
		)
		return id, true, nil
	}
	if err := result.Err(); err != nil {
		return "", false, apperrors.NewGraphQueryFailed("resolve node by embedding", err)
	}
	return "", false, nil
}
