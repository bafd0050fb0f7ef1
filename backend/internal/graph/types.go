package graph

// Similarity thresholds. Discovery is deliberately looser than resolution:
// neighborhood evidence wants recall, merge targets want precision. Kept as
// two separate constants on purpose.
const (
	// DiscoveryThreshold gates candidate nodes during neighborhood search
	DiscoveryThreshold = 0.7
	// ResolutionThreshold gates identity resolution before merging
	ResolutionThreshold = 0.9
)

// DefaultLabel is the node label used when the extractor gave no entity type
const DefaultLabel = "entity"

// Relation is a directed, typed edge between two named nodes
type Relation struct {
	Source       string `json:"source"`
	Relationship string `json:"relationship"`
	Target       string `json:"target"`
}

// Neighbor is one row of a bidirectional 1-hop neighborhood query
type Neighbor struct {
	Source       string  `json:"source"`
	SourceID     string  `json:"source_id"`
	Relationship string  `json:"relationship"`
	RelationID   string  `json:"relation_id"`
	Target       string  `json:"target"`
	TargetID     string  `json:"target_id"`
	Similarity   float64 `json:"similarity"`
}

// RelationUpsert carries one triple plus its resolution results into the
// store. SourceID/TargetID are Neo4j element IDs when the endpoint resolved
// to an existing node, empty when it must be created.
type RelationUpsert struct {
	Source          string
	SourceID        string
	SourceType      string
	SourceEmbedding []float32

	Target          string
	TargetID        string
	TargetType      string
	TargetEmbedding []float32

	Relationship string
	Filters      Filters
}
