package chatsrv

import (
	"encoding/json"
	"regexp"
	"strings"
)

// memoryCandidate is one entry of the extraction model's JSON array output.
type memoryCandidate struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

const extractionPromptTemplate = `Analyze the following conversation and extract potential memories.

USER MESSAGE:
%s

ASSISTANT RESPONSE:
%s

Extract two types of memories:

1. EPISODIC MEMORIES: Personal experiences and user-specific preferences
   Examples: "User prefers Delta airlines", "User visited Paris last year"

2. SEMANTIC MEMORIES: General domain knowledge and facts
   Examples: "Singapore requires passport", "Tokyo has excellent public transit"

Format your response as a JSON array with objects containing:
- "type": Either "EPISODIC" or "SEMANTIC"
- "content": The memory content

Only extract clear, factual information. Do not make assumptions or infer information that isn't explicitly stated.
If no memories can be extracted, return an empty array.

Response format example:
[
  {"type": "EPISODIC", "content": "User prefers window seats on flights"},
  {"type": "SEMANTIC", "content": "Paris is known for the Eiffel Tower"}
]`

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// parseMemoryCandidates parses the extraction model's output leniently: code
// fences are stripped and trailing commas tolerated, but any remaining
// structural failure recovers to an empty list rather than partial fields.
func parseMemoryCandidates(text string) []memoryCandidate {
	trimmed := strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(trimmed, "```json") && strings.HasSuffix(trimmed, "```"):
		trimmed = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(trimmed, "```json"), "```"))
	case strings.HasPrefix(trimmed, "```") && strings.HasSuffix(trimmed, "```"):
		trimmed = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(trimmed, "```"), "```"))
	}

	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil
	}

	var candidates []memoryCandidate
	if err := json.Unmarshal([]byte(trimmed), &candidates); err != nil {
		relaxed := trailingCommaPattern.ReplaceAllString(trimmed, "$1")
		if err := json.Unmarshal([]byte(relaxed), &candidates); err != nil {
			return nil
		}
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		switch c.Type {
		case "EPISODIC", "SEMANTIC":
			kept = append(kept, c)
		}
	}

	return kept
}
