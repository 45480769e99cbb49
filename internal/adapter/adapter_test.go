package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobfinder/internal/apify"
	"github.com/amishk599/jobfinder/internal/model"
	"github.com/amishk599/jobfinder/internal/retry"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// fakeApify serves one succeeded run whose dataset is items. The started
// actor path and decoded input are recorded.
type fakeApify struct {
	items     string
	actorPath string
	input     map[string]any
	runStatus int
}

func (f *fakeApify) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/acts/", func(w http.ResponseWriter, r *http.Request) {
		f.actorPath = r.URL.Path
		if f.runStatus != 0 {
			w.WriteHeader(f.runStatus)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&f.input); err != nil {
			t.Errorf("decode input: %v", err)
		}
		w.Write([]byte(`{"data": {"id": "run1", "status": "SUCCEEDED", "defaultDatasetId": "ds1"}}`))
	})
	mux.HandleFunc("/v2/datasets/ds1/items", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "0" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(f.items))
	})
	return mux
}

// newTestClient returns an apify client aimed at the public API whose
// transport rewrites every request to srv.
func newTestClient(srv *httptest.Server) *apify.Client {
	hc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
	return apify.NewClient("", "tok", hc, apify.Options{GetRetryDelay: time.Millisecond})
}

func testQuery() model.Query {
	return model.Query{
		Request: model.SearchRequest{
			Position:   "Go Developer",
			Experience: "3 years",
			JobNature:  "Full-time remote",
			Location:   "Lahore",
			Companies:  []string{"Acme"},
		},
		Keywords: model.NormalizedKeywords{
			Position:   "Golang Developer",
			Experience: "3 years",
			Location:   "Lahore",
			Country:    "PK",
			City:       "Lahore",
		},
	}
}

func TestLinkedInAdapter_Search(t *testing.T) {
	fake := &fakeApify{items: `[
		{"title": "Senior Go Engineer", "companyName": "Acme", "location": "Lahore, Punjab", "salary": "PKR 500k", "applyUrl": "https://linkedin.com/jobs/1", "workType": "Remote"},
		{"title": "R&amp;D Engineer", "companyName": "Globex"},
		"not an object"
	]`}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	a := NewLinkedInAdapter(newTestClient(srv), "", 50)
	jobs, err := a.Search(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.actorPath != "/v2/acts/bebity~linkedin-jobs-scraper/runs" {
		t.Errorf("unexpected actor path: %s", fake.actorPath)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Senior Go Engineer" || j.Company != "Acme" || j.Location != "Lahore, Punjab" {
		t.Errorf("unexpected job: %+v", j)
	}
	if j.Salary != "PKR 500k" || j.ApplyLink != "https://linkedin.com/jobs/1" {
		t.Errorf("unexpected salary/link: %+v", j)
	}
	if j.JobNature != "Remote" {
		t.Errorf("expected job nature from item, got %q", j.JobNature)
	}
	if j.Experience != "3 years" {
		t.Errorf("expected experience from request, got %q", j.Experience)
	}
	if j.Source != "linkedin" {
		t.Errorf("expected source linkedin, got %q", j.Source)
	}

	d := jobs[1]
	if d.Title != "R&D Engineer" {
		t.Errorf("expected unescaped title, got %q", d.Title)
	}
	if d.Salary != model.DefaultSalary || d.ApplyLink != model.DefaultLink {
		t.Errorf("expected defaults, got salary=%q link=%q", d.Salary, d.ApplyLink)
	}
	if d.Location != "Lahore, PK" {
		t.Errorf("expected query location default, got %q", d.Location)
	}
	if d.JobNature != "Full-time remote" {
		t.Errorf("expected request job nature, got %q", d.JobNature)
	}
}

func TestLinkedInAdapter_Input(t *testing.T) {
	fake := &fakeApify{items: `[]`}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	a := NewLinkedInAdapter(newTestClient(srv), "custom/actor", 25)
	if _, err := a.Search(context.Background(), testQuery()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.actorPath != "/v2/acts/custom~actor/runs" {
		t.Errorf("unexpected actor path: %s", fake.actorPath)
	}

	in := fake.input
	if in["title"] != "Golang Developer" {
		t.Errorf("title = %v", in["title"])
	}
	if in["location"] != "Lahore, PK" {
		t.Errorf("location = %v", in["location"])
	}
	if in["experienceLevel"] != "3" {
		t.Errorf("experienceLevel = %v", in["experienceLevel"])
	}
	if in["rows"] != float64(25) {
		t.Errorf("rows = %v", in["rows"])
	}
	if in["contractType"] != "F" || in["workType"] != "2" {
		t.Errorf("contractType = %v, workType = %v", in["contractType"], in["workType"])
	}
	companies, _ := in["companyName"].([]any)
	if len(companies) != 1 || companies[0] != "Acme" {
		t.Errorf("companyName = %v", in["companyName"])
	}
	proxy, _ := in["proxy"].(map[string]any)
	groups, _ := proxy["apifyProxyGroups"].([]any)
	if len(groups) != 1 || groups[0] != "RESIDENTIAL" {
		t.Errorf("proxy = %v", in["proxy"])
	}
}

func TestIndeedAdapter_Search(t *testing.T) {
	fake := &fakeApify{items: `[
		{"positionName": "Backend Developer", "company": "Initech", "location": "Lahore", "salary": {"salaryText": "PKR 300k"}, "externalApplyLink": "https://initech.example/apply", "url": "https://indeed.com/viewjob?jk=1", "jobType": ["Full-time", "Permanent"]},
		{"title": "QA", "url": "https://indeed.com/viewjob?jk=2"}
	]`}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	a := NewIndeedAdapter(newTestClient(srv), "", 10)
	jobs, err := a.Search(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.actorPath != "/v2/acts/apify~indeed-jobs-scraper/runs" {
		t.Errorf("unexpected actor path: %s", fake.actorPath)
	}
	if fake.input["position"] != "Golang Developer" || fake.input["experienceLevel"] != "midLevel" || fake.input["country"] != "PK" {
		t.Errorf("unexpected input: %v", fake.input)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Salary != "PKR 300k" {
		t.Errorf("expected nested salary, got %q", jobs[0].Salary)
	}
	if jobs[0].ApplyLink != "https://initech.example/apply" {
		t.Errorf("expected external apply link first, got %q", jobs[0].ApplyLink)
	}
	if jobs[0].JobNature != "Full-time, Permanent" {
		t.Errorf("expected joined job type, got %q", jobs[0].JobNature)
	}
	if jobs[1].Company != model.DefaultCompany {
		t.Errorf("expected default company, got %q", jobs[1].Company)
	}
}

func TestIndeedAdapter_OmitsCountryName(t *testing.T) {
	fake := &fakeApify{items: `[]`}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	q := testQuery()
	q.Keywords.Country = "Pakistan"
	if _, err := NewIndeedAdapter(newTestClient(srv), "", 10).Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := fake.input["country"]; ok {
		t.Errorf("expected no country code, got %v", fake.input["country"])
	}
}

func TestGlassdoorAdapter_Search(t *testing.T) {
	fake := &fakeApify{items: `[
		{"jobTitle": "Platform Engineer", "company": {"companyName": "Hooli"}, "locationName": "Karachi", "salaryText": "<b>Competitive</b>", "jobLink": "https://glassdoor.com/job/1"}
	]`}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	jobs, err := NewGlassdoorAdapter(newTestClient(srv), "", 5).Search(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.input["keyword"] != "Golang Developer" || fake.input["maxItems"] != float64(5) {
		t.Errorf("unexpected input: %v", fake.input)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.Company != "Hooli" || j.Location != "Karachi" || j.Salary != "Competitive" || j.Source != "glassdoor" {
		t.Errorf("unexpected job: %+v", j)
	}
}

func TestSearch_ActorHTTPError(t *testing.T) {
	fake := &fakeApify{runStatus: http.StatusUnauthorized}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	_, err := NewLinkedInAdapter(newTestClient(srv), "", 5).Search(context.Background(), testQuery())
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected HTTPError 401, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "linkedin search:") {
		t.Errorf("expected source prefix, got %q", err.Error())
	}
}

func TestLinkedInJobNature(t *testing.T) {
	cases := []struct {
		in             string
		contract, work string
	}{
		{"Full-time", "F", ""},
		{"part time hybrid", "P", "3"},
		{"Contract, Remote", "C", "2"},
		{"onsite", "", "1"},
		{"Internship", "I", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		c, w := linkedInJobNature(tc.in)
		if c != tc.contract || w != tc.work {
			t.Errorf("linkedInJobNature(%q) = (%q, %q), want (%q, %q)", tc.in, c, w, tc.contract, tc.work)
		}
	}
}

func TestExtractText(t *testing.T) {
	if got := extractText("  &lt;p&gt;Hello&lt;/p&gt;   world "); got != "Hello world" {
		t.Errorf("got %q", got)
	}
}

// countingApify starts runs that end in status and serves one item from
// their dataset, failing the first dataFailures page requests with a 503.
type countingApify struct {
	status       string
	dataFailures int32
	runs         atomic.Int32
	pages        atomic.Int32
}

func (f *countingApify) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/acts/", func(w http.ResponseWriter, r *http.Request) {
		f.runs.Add(1)
		w.Write([]byte(`{"data": {"id": "run1", "status": "` + f.status + `", "defaultDatasetId": "ds1"}}`))
	})
	mux.HandleFunc("/v2/datasets/ds1/items", func(w http.ResponseWriter, r *http.Request) {
		if f.pages.Add(1) <= f.dataFailures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("offset") != "0" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"title": "Go Developer", "companyName": "Acme"}]`))
	})
	return mux
}

func TestSearch_StartsOneRunPerSearch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("dataset hiccup re-reads the same dataset", func(t *testing.T) {
		fake := &countingApify{status: apify.StatusSucceeded, dataFailures: 1}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		src := retry.NewRetrySource(NewLinkedInAdapter(newTestClient(srv), "", 10), 2, time.Millisecond, logger)
		jobs, err := src.Search(context.Background(), testQuery())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jobs) != 1 {
			t.Errorf("expected 1 job, got %d", len(jobs))
		}
		if got := fake.runs.Load(); got != 1 {
			t.Errorf("expected 1 actor run, got %d", got)
		}
		if got := fake.pages.Load(); got != 2 {
			t.Errorf("expected 2 dataset requests, got %d", got)
		}
	})

	t.Run("failed run is not restarted", func(t *testing.T) {
		fake := &countingApify{status: apify.StatusFailed}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		src := retry.NewRetrySource(NewLinkedInAdapter(newTestClient(srv), "", 10), 2, time.Millisecond, logger)
		if _, err := src.Search(context.Background(), testQuery()); !errors.Is(err, apify.ErrRunFailed) {
			t.Fatalf("expected ErrRunFailed, got %v", err)
		}
		if got := fake.runs.Load(); got != 1 {
			t.Errorf("expected 1 actor run, got %d", got)
		}
	})
}
