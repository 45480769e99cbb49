package ai

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/amishk599/jobfinder/internal/model"
)

// ParseObject validates that raw is exactly one JSON object, allowing
// surrounding whitespace and a Markdown code fence. Anything else is a
// *model.ParseError naming what.
func ParseObject(what, raw string) (gjson.Result, error) {
	text := stripFence(strings.TrimSpace(raw))
	if text == "" {
		return gjson.Result{}, &model.ParseError{What: what, Reason: "empty output", Raw: raw}
	}
	if !gjson.Valid(text) {
		return gjson.Result{}, &model.ParseError{What: what, Reason: "output is not valid JSON", Raw: raw}
	}
	res := gjson.Parse(text)
	if !res.IsObject() {
		return gjson.Result{}, &model.ParseError{What: what, Reason: "output is not a JSON object", Raw: raw}
	}
	return res, nil
}

// stripFence removes a ```json ... ``` wrapper if present.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
