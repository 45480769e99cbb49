package ai

import (
	"errors"
	"testing"

	"github.com/amishk599/jobfinder/internal/model"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "clean object", input: `{"scores":[1,2]}`},
		{name: "surrounding whitespace", input: "\n  {\"a\":1}  \n"},
		{name: "code fence", input: "```json\n{\"a\":1}\n```"},
		{name: "bare fence", input: "```\n{\"a\":1}\n```"},
		{name: "preamble is rejected", input: `Sure! {"a":1}`, wantErr: true},
		{name: "array is rejected", input: `[1,2,3]`, wantErr: true},
		{name: "empty", input: "   ", wantErr: true},
		{name: "truncated", input: `{"a":`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseObject("test", tc.input)
			if tc.wantErr {
				var pe *model.ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("expected *model.ParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
