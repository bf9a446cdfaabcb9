package services

import (
	"fmt"

	"google.golang.org/genai"
)

const groundingPromptTemplate = `You are a helpful AI assistant with access to a knowledge base and web search.

CONTEXT FROM KNOWLEDGE BASE:
%s

INSTRUCTIONS:
1. Use the provided context to answer the user's question accurately
2. If the context contains relevant information, prioritize it in your response
3. If the context doesn't fully answer the question, provide general knowledge while noting limitations
4. Be clear about what information comes from the knowledge base vs general knowledge
5. Provide specific and helpful answers

USER QUESTION: %s

Please provide a comprehensive response based on the available context.`

// buildGroundingPrompt renders the system instruction that pins the
// model to the retrieved context.
func buildGroundingPrompt(contextText, query string) string {
	return fmt.Sprintf(groundingPromptTemplate, contextText, query)
}

// GetSystemPrompt wraps the grounding prompt in a genai content block
// for use as a system instruction.
func GetSystemPrompt(contextText, query string) *genai.Content {
	contents := genai.Text(buildGroundingPrompt(contextText, query))
	if len(contents) == 0 {
		return nil
	}
	return contents[0]
}
