package memory

import (
	"fmt"

	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/adapter"
)

// ToolStyle selects which schema/prompt variant a model family expects.
// Resolved once at configuration time, not per call.
type ToolStyle int

const (
	// ToolStyleStructured uses strict schemas (additionalProperties: false)
	ToolStyleStructured ToolStyle = iota
	// ToolStyleLoose uses plain schemas for model families that reject
	// strict tool definitions
	ToolStyleLoose
)

// ParseToolStyle maps a config string onto a ToolStyle
func ParseToolStyle(s string) (ToolStyle, error) {
	switch s {
	case "structured", "":
		return ToolStyleStructured, nil
	case "loose":
		return ToolStyleLoose, nil
	default:
		return ToolStyleStructured, fmt.Errorf("unknown tool style: %q", s)
	}
}

// Tool call names the engine dispatches on
const (
	toolExtractEntities  = "extract_entities"
	toolExtractRelations = "establish_relationships"
	toolDeleteMemory     = "delete_graph_memory"
)

func entityProperties() map[string]interface{} {
	return map[string]interface{}{
		"entities": map[string]interface{}{
			"type":        "array",
			"description": "An array of entities with their types.",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"entity": map[string]interface{}{
						"type":        "string",
						"description": "The name or identifier of the entity.",
					},
					"entity_type": map[string]interface{}{
						"type":        "string",
						"description": "The type or category of the entity.",
					},
				},
				"required": []string{"entity", "entity_type"},
			},
		},
	}
}

func relationProperties() map[string]interface{} {
	return map[string]interface{}{
		"entities": map[string]interface{}{
			"type":        "array",
			"description": "An array of relationship triples between entities.",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "The source entity of the relationship.",
					},
					"relationship": map[string]interface{}{
						"type":        "string",
						"description": "The relationship between the source and target entities.",
					},
					"target": map[string]interface{}{
						"type":        "string",
						"description": "The target entity of the relationship.",
					},
				},
				"required": []string{"source", "relationship", "target"},
			},
		},
	}
}

func deleteProperties() map[string]interface{} {
	return map[string]interface{}{
		"source": map[string]interface{}{
			"type":        "string",
			"description": "The source node of the relationship to be deleted.",
		},
		"relationship": map[string]interface{}{
			"type":        "string",
			"description": "The existing relationship between the source and target nodes that needs to be deleted.",
		},
		"target": map[string]interface{}{
			"type":        "string",
			"description": "The target node of the relationship to be deleted.",
		},
	}
}

func buildTool(name, description string, properties map[string]interface{}, required []string, strict bool) adapter.Tool {
	parameters := map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
	if strict {
		parameters["additionalProperties"] = false
	}
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// toolSet is the fixed schema triple for one tool style
type toolSet struct {
	extractEntities  adapter.Tool
	extractRelations adapter.Tool
	deleteMemory     adapter.Tool
}

func newToolSet(style ToolStyle) toolSet {
	strict := style == ToolStyleStructured
	return toolSet{
		extractEntities: buildTool(
			toolExtractEntities,
			"Extract entities and their types from the text.",
			entityProperties(),
			[]string{"entities"},
			strict,
		),
		extractRelations: buildTool(
			toolExtractRelations,
			"Establish relationships among the entities based on the provided text.",
			relationProperties(),
			[]string{"entities"},
			strict,
		),
		deleteMemory: buildTool(
			toolDeleteMemory,
			"Delete the relationship between two nodes. This function deletes the existing relationship.",
			deleteProperties(),
			[]string{"source", "relationship", "target"},
			strict,
		),
	}
}
