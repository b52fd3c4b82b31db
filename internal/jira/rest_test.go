// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jira

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	liberrors "github.com/croche/releasekit/internal/errors"
	"github.com/google/go-cmp/cmp"
)

// request is a request received by the test server.
type request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type recorder struct {
	mu       sync.Mutex
	requests []request
}

func (r *recorder) all() []request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.requests)
}

func newTestServer(t *testing.T, handlers map[string]string) (*RESTClient, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || user != "bot" || password != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		rec.mu.Unlock()
		resp, ok := handlers[r.Method+" "+r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return NewRESTClient(srv.URL+"/", srv.Client()), rec
}

func TestRESTClient(t *testing.T) {
	c, rec := newTestServer(t, map[string]string{
		"GET /rest/api/2/myself":                `{"name":"bot"}`,
		"GET /rest/api/2/project/PROJ/versions": `[{"id":"1","name":"1.0.0","released":true,"releaseDate":"2025-01-01"},{"id":"2","name":"1.1.0","released":false}]`,
		"POST /rest/api/2/version":              `{"id":"3","name":"1.2.0","released":false}`,
		"PUT /rest/api/2/version/2":             `{}`,
		"GET /rest/api/2/search":                `{"issues":[{"key":"PROJ-1","fields":{"fixVersions":[{"id":"2","name":"1.1.0"}]}}]}`,
		"PUT /rest/api/2/issue/PROJ-1":          ``,
	})
	ctx := t.Context()
	if err := c.Login(ctx, "bot", "secret"); err != nil {
		t.Fatal(err)
	}

	versions, err := c.ListVersions(ctx, "PROJ")
	if err != nil {
		t.Fatal(err)
	}
	wantVersions := []Version{
		{ID: "1", Name: "1.0.0", Released: true, ReleaseDate: "2025-01-01"},
		{ID: "2", Name: "1.1.0"},
	}
	if diff := cmp.Diff(wantVersions, versions); diff != "" {
		t.Errorf("ListVersions() mismatch (-want +got):\n%s", diff)
	}

	created, err := c.CreateVersion(ctx, "PROJ", Version{Name: "1.2.0"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Version{ID: "3", Name: "1.2.0"}, created); diff != "" {
		t.Errorf("CreateVersion() mismatch (-want +got):\n%s", diff)
	}

	if err := c.ReleaseVersion(ctx, "PROJ", Version{ID: "2", Name: "1.1.0", Released: true, ReleaseDate: "2026-03-14"}); err != nil {
		t.Fatal(err)
	}

	issues, err := c.SearchIssues(ctx, "project='PROJ' and fixVersion='1.1.0'", 30)
	if err != nil {
		t.Fatal(err)
	}
	wantIssues := []Issue{{Key: "PROJ-1", FixVersions: []Version{{ID: "2", Name: "1.1.0"}}}}
	if diff := cmp.Diff(wantIssues, issues); diff != "" {
		t.Errorf("SearchIssues() mismatch (-want +got):\n%s", diff)
	}

	if err := c.UpdateIssueFixVersions(ctx, "PROJ-1", []string{"3"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatal(err)
	}

	bodies := map[string]any{}
	for _, r := range rec.all() {
		if r.Body == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(r.Body), &v); err != nil {
			t.Fatalf("invalid request body %q: %v", r.Body, err)
		}
		bodies[r.Method+" "+r.Path] = v
	}
	wantBodies := map[string]any{
		"POST /rest/api/2/version":     map[string]any{"name": "1.2.0", "project": "PROJ"},
		"PUT /rest/api/2/version/2":    map[string]any{"released": true, "releaseDate": "2026-03-14"},
		"PUT /rest/api/2/issue/PROJ-1": map[string]any{"fields": map[string]any{"fixVersions": []any{map[string]any{"id": "3"}}}},
	}
	if diff := cmp.Diff(wantBodies, bodies); diff != "" {
		t.Errorf("request bodies mismatch (-want +got):\n%s", diff)
	}
	wantQuery := "fields=fixVersions&jql=project%3D%27PROJ%27+and+fixVersion%3D%271.1.0%27&maxResults=30"
	for _, r := range rec.all() {
		if r.Path == "/rest/api/2/search" && r.Query != wantQuery {
			t.Errorf("search query = %q, want %q", r.Query, wantQuery)
		}
	}
}

func TestRESTClient_Errors(t *testing.T) {
	c, _ := newTestServer(t, map[string]string{
		"GET /rest/api/2/myself": `{"name":"bot"}`,
	})
	ctx := t.Context()
	if _, err := c.ListVersions(ctx, "PROJ"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("ListVersions() before login error = %v, want %v", err, errNotLoggedIn)
	}
	if err := c.Login(ctx, "bot", "wrong"); !errors.Is(err, liberrors.ErrRemote) {
		t.Errorf("Login() error = %v, want %v", err, liberrors.ErrRemote)
	}
	if err := c.Login(ctx, "bot", "secret"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListVersions(ctx, "NOPE"); !errors.Is(err, liberrors.ErrRemote) {
		t.Errorf("ListVersions() error = %v, want %v", err, liberrors.ErrRemote)
	}
	if err := c.ReleaseVersion(ctx, "PROJ", Version{Name: "1.0.0"}); err == nil {
		t.Error("ReleaseVersion() expected error for version without id, got nil")
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Logout(ctx); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("second Logout() error = %v, want %v", err, errNotLoggedIn)
	}
}

func TestDiscoverBaseURL(t *testing.T) {
	for _, test := range []struct {
		in   string
		want string
	}{
		{"https://jira.example.com/browse/PROJ", "https://jira.example.com"},
		{"https://jira.example.com/browse/PROJ-12", "https://jira.example.com"},
		{"https://example.com/jira/browse/PROJ", "https://example.com/jira"},
		{"https://jira.example.com/", "https://jira.example.com"},
		{" http://localhost:8080 ", "http://localhost:8080"},
	} {
		t.Run(test.in, func(t *testing.T) {
			got, err := DiscoverBaseURL(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
	for _, in := range []string{"", "jira.example.com/browse/PROJ", "://bad"} {
		if _, err := DiscoverBaseURL(in); err == nil {
			t.Errorf("DiscoverBaseURL(%q) expected error, got nil", in)
		}
	}
}
