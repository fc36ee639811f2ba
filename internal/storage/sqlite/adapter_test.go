package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/storage"
)

func newTestStorage(t *testing.T) storage.Storage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRepository() *domain.Repository {
	lang := "Go"
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Repository{
		ID:        "9007199254740993",
		Name:      "tool",
		Owner:     "alice",
		FullName:  "alice/tool",
		URL:       "https://github.com/alice/tool",
		Username:  "alice",
		Language:  &lang,
		Stars:     5,
		Topics:    []string{"cli", "go"},
		AvatarURL: "https://avatars.example/alice",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
}

func TestRepository_SaveAndGet(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRepository(ctx, testRepository()))

	got, err := s.GetRepository(ctx, "9007199254740993")
	require.NoError(t, err)
	assert.Equal(t, "alice/tool", got.FullName)
	assert.Nil(t, got.Description)
	require.NotNil(t, got.Language)
	assert.Equal(t, "Go", *got.Language)
	assert.Equal(t, []string{"cli", "go"}, got.Topics)
	assert.True(t, got.CreatedAt.Equal(testRepository().CreatedAt))
}

func TestRepository_Upsert(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	repo := testRepository()
	require.NoError(t, s.SaveRepository(ctx, repo))
	repo.Stars = 99
	repo.Topics = nil
	require.NoError(t, s.SaveRepository(ctx, repo))

	repos, err := s.GetRepositoriesByUser(ctx, "ALICE")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, 99, repos[0].Stars)
	assert.Equal(t, []string{}, repos[0].Topics)
}

func TestRepository_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetRepository(context.Background(), "1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestIssue_UpsertKeepsID(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRepository(ctx, testRepository()))

	issue := &domain.Issue{Title: "bug", State: "open", Number: 4, RepositoryID: "9007199254740993"}
	first, err := s.SaveIssue(ctx, issue)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Nil(t, first.Body)

	body := "steps"
	issue.Body = &body
	issue.Title = "bug (edited)"
	second, err := s.SaveIssue(ctx, issue)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = s.SaveIssue(ctx, &domain.Issue{Title: "other", State: "open", Number: 7, RepositoryID: "9007199254740993"})
	require.NoError(t, err)

	issues, err := s.GetIssues(ctx, "9007199254740993")
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 7, issues[0].Number)
	assert.Equal(t, "bug (edited)", issues[1].Title)
	require.NotNil(t, issues[1].Body)
	assert.Equal(t, "steps", *issues[1].Body)
}

func TestIssue_RequiresRepository(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.SaveIssue(context.Background(), &domain.Issue{Title: "x", State: "open", Number: 1, RepositoryID: "missing"})
	assert.Error(t, err)
}
