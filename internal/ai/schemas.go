package ai

// KeywordsSchema constrains the normalizer's output.
var KeywordsSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"position":   map[string]any{"type": "string"},
		"experience": map[string]any{"type": "string"},
		"location":   map[string]any{"type": "string"},
		"skills":     map[string]any{"type": "string"},
		"country":    map[string]any{"type": "string"},
		"city":       map[string]any{"type": "string"},
	},
	"required": []string{"position", "experience", "location", "skills", "country", "city"},
}

// ScoresSchema constrains the ranker's output.
var ScoresSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"scores": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "integer"},
		},
	},
	"required": []string{"scores"},
}
