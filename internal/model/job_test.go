package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSearchRequest_Validate(t *testing.T) {
	if err := (SearchRequest{Position: "Go Developer"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := (SearchRequest{Position: "   ", Location: "Lahore"}).Validate()
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "position" {
		t.Errorf("expected position ValidationError, got %v", err)
	}
}

func TestSearchRequest_WireNames(t *testing.T) {
	var req SearchRequest
	body := `{"position":"Dev","experience":"2 years","salary":"70k","jobNature":"remote","location":"Lahore","skills":"go"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.JobNature != "remote" || req.Skills != "go" || req.Salary != "70k" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestJobRecord_WireNames(t *testing.T) {
	data, err := json.Marshal(RankedResult{Jobs: []JobRecord{{Title: "Dev", ApplyLink: "x", JobNature: "remote"}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"relevant_jobs"`, `"job_title":"Dev"`, `"apply_link":"x"`, `"jobNature":"remote"`, `"similarity":0`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}

func TestNormalizedKeywords_SearchLocation(t *testing.T) {
	tests := []struct {
		kw   NormalizedKeywords
		want string
	}{
		{NormalizedKeywords{Location: "Punjab", City: "Lahore", Country: "Pakistan"}, "Lahore, Pakistan"},
		{NormalizedKeywords{Location: "Punjab", Country: "Pakistan"}, "Pakistan"},
		{NormalizedKeywords{Location: "Punjab"}, "Punjab"},
	}
	for _, tt := range tests {
		if got := tt.kw.SearchLocation(); got != tt.want {
			t.Errorf("SearchLocation() = %q, want %q", got, tt.want)
		}
	}
}

func TestFallbackKeywords(t *testing.T) {
	req := SearchRequest{Position: "Dev", Experience: "2", Location: "L", Skills: "go", Country: "PK", City: "Lahore"}
	kw := FallbackKeywords(req)
	if kw.Position != "Dev" || kw.Skills != "go" || kw.City != "Lahore" || kw.Country != "PK" {
		t.Errorf("unexpected keywords: %+v", kw)
	}
	if got := kw.QueryText(); got != "Dev go 2 L" {
		t.Errorf("QueryText() = %q", got)
	}
}

func TestHTTPError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &HTTPError{StatusCode: 503, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected HTTPError to unwrap")
	}
	if err.Error() != "HTTP 503: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
