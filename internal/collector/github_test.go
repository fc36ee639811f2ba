package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/logging"
)

const repoJSON = `{
	"id": 9007199254740993,
	"name": "tool",
	"full_name": "alice/tool",
	"html_url": "https://github.com/alice/tool",
	"description": null,
	"private": false,
	"fork": %t,
	"homepage": null,
	"language": "Go",
	"stargazers_count": 12,
	"watchers_count": 12,
	"forks_count": 3,
	"owner": {"login": "alice", "avatar_url": "https://avatars.example/alice"},
	"created_at": "2024-01-02T03:04:05Z",
	"updated_at": "2024-02-03T04:05:06Z"
}`

func newTestCollector(t *testing.T, mux *http.ServeMux) Collector {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewGitHubCollector("", srv.URL, logging.Discard())
	require.NoError(t, err)
	return c
}

func TestGetRepository_Projects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/alice/tool", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, repoJSON, false)
	})
	c := newTestCollector(t, mux)

	repo, err := c.GetRepository(context.Background(), "alice", "tool")
	require.NoError(t, err)

	assert.Equal(t, "9007199254740993", repo.ID)
	assert.Equal(t, "tool", repo.Name)
	assert.Equal(t, "alice", repo.Owner)
	assert.Equal(t, "alice/tool", repo.FullName)
	assert.Equal(t, "https://github.com/alice/tool", repo.URL)
	assert.Nil(t, repo.Description)
	assert.Nil(t, repo.Homepage)
	require.NotNil(t, repo.Language)
	assert.Equal(t, "Go", *repo.Language)
	assert.Equal(t, 12, repo.Stars)
	assert.Equal(t, 12, repo.Watchers)
	assert.Equal(t, 3, repo.Forks)
	assert.NotNil(t, repo.Topics)
	assert.Empty(t, repo.Topics)
	assert.Equal(t, "https://avatars.example/alice", repo.AvatarURL)
	assert.Equal(t, 2024, repo.CreatedAt.Year())
}

func TestGetRepository_RejectsFork(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/alice/tool", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, repoJSON, true)
	})
	c := newTestCollector(t, mux)

	repo, err := c.GetRepository(context.Background(), "alice", "tool")
	assert.Nil(t, repo)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeForkNotAllowed))
}

func TestGetRepository_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/alice/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	c := newTestCollector(t, mux)

	_, err := c.GetRepository(context.Background(), "alice", "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeRemoteFetchFailed))
	assert.Equal(t, "Could not fetch the repository from GitHub", apperrors.UserMessage(err))
}

func TestListOpenIssues_FiltersPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/alice/tool/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[
			{"id": 11, "number": 3, "title": "newest", "body": "b", "state": "open"},
			{"id": 12, "number": 2, "title": "a pr", "state": "open", "pull_request": {"url": "x"}},
			{"id": 13, "number": 1, "title": "oldest", "body": null, "state": "open"}
		]`)
	})
	c := newTestCollector(t, mux)

	issues, err := c.ListOpenIssues(context.Background(), "alice", "tool")
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, 3, issues[0].Number)
	assert.Equal(t, "11", issues[0].RemoteID)
	require.NotNil(t, issues[0].Body)
	assert.Equal(t, "b", *issues[0].Body)
	assert.Equal(t, 1, issues[1].Number)
	assert.Nil(t, issues[1].Body)
}

func TestListOpenIssues_Failure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/alice/tool/issues", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestCollector(t, mux)

	issues, err := c.ListOpenIssues(context.Background(), "alice", "tool")
	assert.Nil(t, issues)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeIssueFetchFailed))
}
