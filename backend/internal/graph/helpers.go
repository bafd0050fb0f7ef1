package graph

import (
	"math"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getFloat64FromRecord(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0.0
	}
	if f, ok := val.(float64); ok {
		return f
	}
	if i, ok := val.(int64); ok {
		return float64(i)
	}
	return 0.0
}

// embeddingParam converts an embedding to the float64 slice the Neo4j
// driver serializes natively.
func embeddingParam(embedding []float32) []float64 {
	out := make([]float64, len(embedding))
	for i, v := range embedding {
		out[i] = float64(v)
	}
	return out
}

// CosineSimilarity mirrors the similarity expression the store evaluates
// in Cypher, rounded to 4 decimal places. Vectors must be equal length.
func CosineSimilarity(a, b []float32) float64 {
	var dot, la, lb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		la += float64(a[i]) * float64(a[i])
		lb += float64(b[i]) * float64(b[i])
	}
	if la == 0 || lb == 0 {
		return 0
	}
	return math.Round(dot/(math.Sqrt(la)*math.Sqrt(lb))*10000) / 10000
}

func mergeParams(dst map[string]interface{}, src map[string]interface{}) map[string]interface{} {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
