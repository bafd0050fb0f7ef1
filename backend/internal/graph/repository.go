package graph

import (
	"context"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/logger"
)

// Repository handles all Neo4j database operations for the fact graph
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

var tokenPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// safeToken validates a normalized name before it is interpolated into
// Cypher. Labels and relationship types cannot be parameterized, so anything
// that does not match the normalized form falls back to the default.
func safeToken(token, fallback string) string {
	if tokenPattern.MatchString(token) {
		return token
	}
	return fallback
}

// similarityExpr renders the cosine similarity between a stored embedding
// and the $embedding parameter, rounded to 4 decimal places as the store
// cannot index it anyway.
func similarityExpr(alias string) string {
	return fmt.Sprintf(`round(
		reduce(dot = 0.0, i IN range(0, size(%[1]s.embedding)-1) | dot + %[1]s.embedding[i] * $embedding[i]) /
		(sqrt(reduce(l2 = 0.0, i IN range(0, size(%[1]s.embedding)-1) | l2 + %[1]s.embedding[i] * %[1]s.embedding[i])) *
		sqrt(reduce(l2 = 0.0, i IN range(0, size($embedding)-1) | l2 + $embedding[i] * $embedding[i])))
	, 4)`, alias)
}
