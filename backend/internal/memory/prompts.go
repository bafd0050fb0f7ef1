package memory

import (
	"fmt"
	"strings"

	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/graph"
)

func entitySystemPrompt(userID string) string {
	if userID == "" {
		userID = "USER"
	}
	return fmt.Sprintf("You are a smart assistant who understands entities and their types in a given text. "+
		"If user message contains self reference such as 'I', 'me', 'my' etc. then use %s as the source entity. "+
		"Extract all the entities from the text. ***DO NOT*** answer the question itself if the given text is a question.", userID)
}

func relationSystemPrompt(userID string) string {
	if userID == "" {
		userID = "USER"
	}
	return fmt.Sprintf(`You are an advanced algorithm designed to extract structured information from text to construct knowledge graphs. Your goal is to capture comprehensive information while maintaining accuracy.

Instructions:
1. Extract only explicitly stated information from the text.
2. Identify relationships among the entities provided.
3. If user message contains self reference such as 'I', 'me', 'my' etc. then use %s as the source entity.

Relationships:
    - Use consistent, general, and timeless relationship types.
    - Example: prefer "professor" over "became_professor".

Entity Consistency:
    - Use the most complete identifier for entities mentioned multiple times.
    - Maintain entity consistency across the extraction.

Strive to construct a coherent and easily understandable knowledge graph.`, userID)
}

func relationUserPrompt(text string, entities []string) string {
	return fmt.Sprintf("List of entities: [%s]. \n\nText: %s", strings.Join(entities, ", "), text)
}

func deleteSystemPrompt(userID string) string {
	if userID == "" {
		userID = "USER"
	}
	return fmt.Sprintf(`You are a graph memory manager specializing in identifying, managing, and optimizing relationships within graph-based memories. Your task is to analyze a list of existing relationships and determine which ones should be deleted based on the new information provided.

Guidelines:
1. Identification: use the new information to evaluate existing relationships in the memory graph.
2. Deletion criteria: delete a relationship only if it directly contradicts or is made outdated by the new information.
3. Do not delete a relationship merely because it is not mentioned in the new information.
4. %s is the identifier to use for self references such as 'I', 'me', 'my' in the new information.
5. Refer to relationships only by the exact source, relationship and target shown in the list.`, userID)
}

func deleteUserPrompt(neighborhood []graph.Neighbor, text string) string {
	var sb strings.Builder
	sb.WriteString("Here are the existing memories:\n")
	for _, n := range neighborhood {
		sb.WriteString(fmt.Sprintf("%s -- %s -- %s\n", n.Source, n.Relationship, n.Target))
	}
	sb.WriteString("\nNew information: ")
	sb.WriteString(text)
	return sb.String()
}
