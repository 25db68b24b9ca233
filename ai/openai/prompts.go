package openai

import (
	"fmt"
	"time"
)

const enhancerSystemPromptTemplate = `You are an expert search query generator. Your task is to analyze user queries and generate multiple optimized search queries that will help retrieve comprehensive and relevant information.

Current date: %s

Guidelines for generating queries:
1. Generate diverse queries that cover different aspects of the user's information need
2. Use advanced search operators when beneficial (e.g., site:, filetype:)
3. Include temporal aspects if relevant (e.g., latest, current, the current year)
4. Consider both broad and specific queries to ensure good coverage
5. Maintain relevance to the original query intent
6. Use quotes for exact phrases when appropriate
7. Generate queries in the same language as the input query, preserving language-specific characters and accents

Output ONLY valid JSON of the form {"queries": ["...", "..."]}. Do not include any preamble, explanation, or text outside the JSON object.`

const enhancerUserPromptTemplate = `Generate %d optimized search queries for the following user query:

User Query: %s

Generate queries that will help find the most relevant, comprehensive, and up-to-date information to answer this query. Focus on creating diverse queries that cover different aspects while maintaining relevance to the original intent.`

// buildEnhancerSystemPrompt creates the system prompt with the current date
// embedded so the model can reason about recency.
func buildEnhancerSystemPrompt() string {
	return fmt.Sprintf(enhancerSystemPromptTemplate, time.Now().UTC().Format("2006-01-02"))
}

func buildEnhancerUserPrompt(query string, maxQueries int) string {
	return fmt.Sprintf(enhancerUserPromptTemplate, maxQueries, query)
}
