package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/keywords.tmpl
var keywordsPromptRaw string

//go:embed prompts/ranking.tmpl
var rankingPromptRaw string

// KeywordsTemplate renders a model.SearchRequest into the normalizer prompt.
var KeywordsTemplate = template.Must(template.New("keywords").Parse(keywordsPromptRaw))

// RankingTemplate renders {Query string; Jobs []model.JobRecord} into the ranking prompt.
var RankingTemplate = template.Must(template.New("ranking").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(rankingPromptRaw))
