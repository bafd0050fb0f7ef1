package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
)

// ============================================================================
// Mutation Operations
// ============================================================================

// UpsertRelation materializes one triple. Exactly one of four branches runs,
// chosen by which endpoints already resolved to an existing node. New nodes
// are stamped with tenancy, embedding and creation time exactly once;
// resolved nodes are referenced by element ID and never restamped. The edge
// is merged on (source, type, target), so re-adding an identical fact is a
// no-op rather than a duplicate.
func (r *Repository) UpsertRelation(ctx context.Context, u RelationUpsert) (*Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	relType := safeToken(u.Relationship, "related_to")
	sourceLabel := safeToken(u.SourceType, DefaultLabel)
	targetLabel := safeToken(u.TargetType, DefaultLabel)

	var query string
	params := u.Filters.Params()

	switch {
	case u.SourceID == "" && u.TargetID == "":
		query = fmt.Sprintf(`
			CREATE (source:%s {name: $source_name, embedding: $source_embedding,
				user_id: $user_id, agent_id: $agent_id, run_id: $run_id, created: timestamp()})
			CREATE (target:%s {name: $target_name, embedding: $target_embedding,
				user_id: $user_id, agent_id: $agent_id, run_id: $run_id, created: timestamp()})
			MERGE (source)-[r:%s]->(target)
			ON CREATE SET r.created = timestamp()
			RETURN source.name AS source, type(r) AS relationship, target.name AS target
		`, sourceLabel, targetLabel, relType)
		params["source_name"] = u.Source
		params["source_embedding"] = embeddingParam(u.SourceEmbedding)
		params["target_name"] = u.Target
		params["target_embedding"] = embeddingParam(u.TargetEmbedding)

	case u.SourceID == "":
		query = fmt.Sprintf(`
			MATCH (target)
			WHERE elementId(target) = $target_id
			CREATE (source:%s {name: $source_name, embedding: $source_embedding,
				user_id: $user_id, agent_id: $agent_id, run_id: $run_id, created: timestamp()})
			MERGE (source)-[r:%s]->(target)
			ON CREATE SET r.created = timestamp()
			RETURN source.name AS source, type(r) AS relationship, target.name AS target
		`, sourceLabel, relType)
		params["target_id"] = u.TargetID
		params["source_name"] = u.Source
		params["source_embedding"] = embeddingParam(u.SourceEmbedding)

	case u.TargetID == "":
		query = fmt.Sprintf(`
			MATCH (source)
			WHERE elementId(source) = $source_id
			CREATE (target:%s {name: $target_name, embedding: $target_embedding,
				user_id: $user_id, agent_id: $agent_id, run_id: $run_id, created: timestamp()})
			MERGE (source)-[r:%s]->(target)
			ON CREATE SET r.created = timestamp()
			RETURN source.name AS source, type(r) AS relationship, target.name AS target
		`, targetLabel, relType)
		params["source_id"] = u.SourceID
		params["target_name"] = u.Target
		params["target_embedding"] = embeddingParam(u.TargetEmbedding)

	default:
		query = fmt.Sprintf(`
			MATCH (source)
			WHERE elementId(source) = $source_id
			MATCH (target)
			WHERE elementId(target) = $target_id
			MERGE (source)-[r:%s]->(target)
			ON CREATE SET r.created = timestamp()
			RETURN source.name AS source, type(r) AS relationship, target.name AS target
		`, relType)
		params["source_id"] = u.SourceID
		params["target_id"] = u.TargetID
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("upsert relation", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("verify relation upsert", err)
	}

	relation := &Relation{
		Source:       getStringFromRecord(record, "source"),
		Relationship: getStringFromRecord(record, "relationship"),
		Target:       getStringFromRecord(record, "target"),
	}

	r.logger.Debug("Relation upserted",
		zap.String("source", relation.Source),
		zap.String("relationship", relation.Relationship),
		zap.String("target", relation.Target),
	)
	return relation, nil
}

// DeleteRelation removes edges matching the exact relationship type and
// endpoint names under the tenancy predicate. Zero matches is not an error;
// deletion is idempotent.
func (r *Repository) DeleteRelation(ctx context.Context, source, relationship, target string, filters Filters) ([]Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	relType := safeToken(relationship, "")
	if relType == "" {
		return nil, nil
	}

	query := fmt.Sprintf(`
		MATCH (n)-[r:%s]->(m)
		WHERE %s
		  AND %s
		DELETE r
		RETURN n.name AS source, type(r) AS relationship, m.name AS target
	`, relType,
		filters.Clause("n", "n.name = $source_name"),
		filters.Clause("m", "m.name = $target_name"))

	params := mergeParams(map[string]interface{}{
		"source_name": source,
		"target_name": target,
	}, filters.Params())

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("delete relation", err)
	}

	var deleted []Relation
	for result.Next(ctx) {
		record := result.Record()
		deleted = append(deleted, Relation{
			Source:       getStringFromRecord(record, "source"),
			Relationship: getStringFromRecord(record, "relationship"),
			Target:       getStringFromRecord(record, "target"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("delete relation", err)
	}

	if len(deleted) > 0 {
		r.logger.Info("Relations deleted",
			zap.Int("count", len(deleted)),
			zap.String("relationship", relType),
		)
	}
	return deleted, nil
}

// DeleteAll detaches and removes every node matching the tenancy predicate.
// An unscoped call is rejected before the store is touched.
func (r *Repository) DeleteAll(ctx context.Context, filters Filters) error {
	if filters.IsZero() {
		return apperrors.ErrUnscopedDelete
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (n)
		WHERE %s
		DETACH DELETE n
	`, filters.Clause("n"))

	if _, err := session.Run(ctx, query, filters.Params()); err != nil {
		return apperrors.NewGraphQueryFailed("delete scope", err)
	}

	r.logger.Info("Scoped graph deleted",
		zap.String("user_id", filters.UserID),
		zap.String("agent_id", filters.AgentID),
		zap.String("run_id", filters.RunID),
	)
	return nil
}
