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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	liberrors "github.com/croche/releasekit/internal/errors"
)

const apiPath = "/rest/api/2"

// errNotLoggedIn is returned by RESTClient calls made outside a session.
var errNotLoggedIn = errors.New("not logged in to jira")

// RESTClient is a Client for the JIRA REST API, version 2.
type RESTClient struct {
	baseURL    string
	httpClient *http.Client

	user     string
	password string
	loggedIn bool
}

// NewRESTClient returns a client for the JIRA server at baseURL. A nil
// httpClient means http.DefaultClient.
func NewRESTClient(baseURL string, httpClient *http.Client) *RESTClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// DiscoverBaseURL returns the server URL of a JIRA project or issue URL,
// such as https://jira.example.com/browse/PROJ.
func DiscoverBaseURL(issueManagementURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(issueManagementURL))
	if err != nil {
		return "", fmt.Errorf("parsing jira url %q: %w", issueManagementURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid jira url %q", issueManagementURL)
	}
	if i := strings.Index(u.Path, "/browse/"); i >= 0 {
		u.Path = u.Path[:i]
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Login checks the credentials against the server and keeps them for the
// following calls.
func (c *RESTClient) Login(ctx context.Context, user, password string) error {
	c.user, c.password = user, password
	if err := c.do(ctx, http.MethodGet, "/myself", nil, nil); err != nil {
		c.user, c.password = "", ""
		return fmt.Errorf("logging in to %s as %q: %w", c.baseURL, user, err)
	}
	c.loggedIn = true
	slog.Debug("logged in to jira", "url", c.baseURL, "user", user)
	return nil
}

// Logout forgets the credentials.
func (c *RESTClient) Logout(ctx context.Context) error {
	if !c.loggedIn {
		return errNotLoggedIn
	}
	c.user, c.password, c.loggedIn = "", "", false
	return nil
}

// ListVersions returns the versions of a project.
func (c *RESTClient) ListVersions(ctx context.Context, projectKey string) ([]Version, error) {
	var versions []Version
	if err := c.call(ctx, http.MethodGet, "/project/"+url.PathEscape(projectKey)+"/versions", nil, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

type createVersionRequest struct {
	Name    string `json:"name"`
	Project string `json:"project"`
}

// CreateVersion creates a version named v.Name.
func (c *RESTClient) CreateVersion(ctx context.Context, projectKey string, v Version) (Version, error) {
	var created Version
	req := &createVersionRequest{Name: v.Name, Project: projectKey}
	if err := c.call(ctx, http.MethodPost, "/version", req, &created); err != nil {
		return Version{}, err
	}
	return created, nil
}

type releaseVersionRequest struct {
	Released    bool   `json:"released"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}

// ReleaseVersion releases v, which must have an id.
func (c *RESTClient) ReleaseVersion(ctx context.Context, projectKey string, v Version) error {
	if v.ID == "" {
		return fmt.Errorf("version %q of %s has no id", v.Name, projectKey)
	}
	req := &releaseVersionRequest{Released: true, ReleaseDate: v.ReleaseDate}
	return c.call(ctx, http.MethodPut, "/version/"+url.PathEscape(v.ID), req, nil)
}

type searchResponse struct {
	Issues []struct {
		Key    string `json:"key"`
		Fields struct {
			FixVersions []Version `json:"fixVersions"`
		} `json:"fields"`
	} `json:"issues"`
}

// SearchIssues returns the key and fix versions of matching issues.
func (c *RESTClient) SearchIssues(ctx context.Context, jql string, maxResults int) ([]Issue, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("fields", "fixVersions")
	var resp searchResponse
	if err := c.call(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	issues := make([]Issue, len(resp.Issues))
	for i, issue := range resp.Issues {
		issues[i] = Issue{Key: issue.Key, FixVersions: issue.Fields.FixVersions}
	}
	return issues, nil
}

type versionRef struct {
	ID string `json:"id"`
}

type updateIssueRequest struct {
	Fields struct {
		FixVersions []versionRef `json:"fixVersions"`
	} `json:"fields"`
}

// UpdateIssueFixVersions sets the fix versions of an issue by id.
func (c *RESTClient) UpdateIssueFixVersions(ctx context.Context, issueKey string, versionIDs []string) error {
	var req updateIssueRequest
	req.Fields.FixVersions = make([]versionRef, len(versionIDs))
	for i, id := range versionIDs {
		req.Fields.FixVersions[i] = versionRef{ID: id}
	}
	return c.call(ctx, http.MethodPut, "/issue/"+url.PathEscape(issueKey), &req, nil)
}

func (c *RESTClient) call(ctx context.Context, method, path string, body, out any) error {
	if !c.loggedIn {
		return errNotLoggedIn
	}
	return c.do(ctx, method, path, body, out)
}

func (c *RESTClient) do(ctx context.Context, method, path string, body, out any) error {
	u := c.baseURL + apiPath + path
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return liberrors.Remote(err, "%s %s", method, u)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return liberrors.CustomError(liberrors.ErrRemote, "%s %s: status=%d body=%s", method, u, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return liberrors.Remote(err, "decoding response of %s %s", method, u)
	}
	return nil
}
