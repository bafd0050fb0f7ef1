package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
)

// ============================================================================
// Read Operations
// ============================================================================

// Neighborhood runs a bidirectional 1-hop query around every node whose
// embedding is within DiscoveryThreshold of the query embedding, scoped by
// tenancy. Both directions matter: a contradiction can be phrased from
// either side of the relation.
func (r *Repository) Neighborhood(ctx context.Context, embedding []float32, filters Filters, limit int) ([]Neighbor, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if limit < 1 {
		limit = 100
	}

	query := fmt.Sprintf(`
		MATCH (n)
		WHERE n.embedding IS NOT NULL
		  AND %[1]s
		WITH n, %[3]s AS similarity
		WHERE similarity >= $threshold
		MATCH (n)-[r]->(m)
		WHERE %[2]s
		RETURN n.name AS source, elementId(n) AS source_id, type(r) AS relationship,
		       elementId(r) AS relation_id, m.name AS target, elementId(m) AS target_id, similarity

		UNION

		MATCH (n)
		WHERE n.embedding IS NOT NULL
		  AND %[1]s
		WITH n, %[3]s AS similarity
		WHERE similarity >= $threshold
		MATCH (m)-[r]->(n)
		WHERE %[2]s
		RETURN m.name AS source, elementId(m) AS source_id, type(r) AS relationship,
		       elementId(r) AS relation_id, n.name AS target, elementId(n) AS target_id, similarity
		ORDER BY similarity DESC
		LIMIT $limit
	`, filters.Clause("n"), filters.Clause("m"), similarityExpr("n"))

	params := mergeParams(map[string]interface{}{
		"embedding": embeddingParam(embedding),
		"threshold": DiscoveryThreshold,
		"limit":     limit,
	}, filters.Params())

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("neighborhood", err)
	}

	var neighbors []Neighbor
	for result.Next(ctx) {
		record := result.Record()
		neighbors = append(neighbors, Neighbor{
			Source:       getStringFromRecord(record, "source"),
			SourceID:     getStringFromRecord(record, "source_id"),
			Relationship: getStringFromRecord(record, "relationship"),
			RelationID:   getStringFromRecord(record, "relation_id"),
			Target:       getStringFromRecord(record, "target"),
			TargetID:     getStringFromRecord(record, "target_id"),
			Similarity:   getFloat64FromRecord(record, "similarity"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("neighborhood", err)
	}

	return neighbors, nil
}

// ListRelations returns up to limit triples matching the tenancy predicate,
// unranked. Both endpoints must match the scope.
func (r *Repository) ListRelations(ctx context.Context, filters Filters, limit int) ([]Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if limit < 1 {
		limit = 100
	}

	query := fmt.Sprintf(`
		MATCH (n)-[r]->(m)
		WHERE %s AND %s
		RETURN n.name AS source, type(r) AS relationship, m.name AS target
		LIMIT $limit
	`, filters.Clause("n"), filters.Clause("m"))

	params := mergeParams(map[string]interface{}{"limit": limit}, filters.Params())

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("list relations", err)
	}

	var relations []Relation
	for result.Next(ctx) {
		record := result.Record()
		relations = append(relations, Relation{
			Source:       getStringFromRecord(record, "source"),
			Relationship: getStringFromRecord(record, "relationship"),
			Target:       getStringFromRecord(record, "target"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("list relations", err)
	}

	r.logger.Debug("Listed relations",
		zap.Int("count", len(relations)),
		zap.Int("limit", limit),
	)
	return relations, nil
}
