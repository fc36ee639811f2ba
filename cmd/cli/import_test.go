package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/logging"
	"github.com/kurihiro0119/github-issue-importer/internal/workflow"
)

type stubCollector struct {
	issues []*domain.Issue
}

func (s *stubCollector) GetRepository(ctx context.Context, owner, name string) (*domain.Repository, error) {
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	return &domain.Repository{
		ID: "55", Name: name, Owner: owner, FullName: owner + "/" + name,
		URL: "https://github.com/" + owner + "/" + name, Topics: []string{},
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

func (s *stubCollector) ListOpenIssues(ctx context.Context, owner, name string) ([]*domain.Issue, error) {
	out := make([]*domain.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		out = append(out, issue.Clone())
	}
	return out, nil
}

type stubPersister struct {
	repos  []*domain.Repository
	issues []*domain.Issue
	reject map[int]string
}

func (s *stubPersister) CreateRepository(ctx context.Context, repo *domain.Repository) error {
	s.repos = append(s.repos, repo)
	return nil
}

func (s *stubPersister) CreateIssue(ctx context.Context, issue *domain.Issue) error {
	if msg, ok := s.reject[issue.Number]; ok {
		return apperrors.NewIssueSaveFailedError(issue.Number, msg, nil)
	}
	s.issues = append(s.issues, issue)
	return nil
}

func openIssues() []*domain.Issue {
	return []*domain.Issue{
		{Title: "first", State: "open", Number: 1},
		{Title: "second", State: "open", Number: 4},
	}
}

func newTestImporter(persister *stubPersister, input string) (*importer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	wf := workflow.New(&stubCollector{issues: openIssues()}, persister, "alice", logging.Discard())
	return &importer{
		wf:       wf,
		out:      out,
		prompter: newPrompter(strings.NewReader(input), out),
	}, out
}

func TestImporter_InteractiveSelection(t *testing.T) {
	persister := &stubPersister{}
	imp, out := newTestImporter(persister, "y\n4\n")

	require.NoError(t, imp.run(context.Background(), "https://github.com/alice/tool"))

	require.Len(t, persister.repos, 1)
	assert.Equal(t, "alice", persister.repos[0].Username)
	require.Len(t, persister.issues, 1)
	assert.Equal(t, 4, persister.issues[0].Number)
	assert.Equal(t, "55", persister.issues[0].RepositoryID)
	assert.Contains(t, out.String(), "Found 2 open issues.")
	assert.Contains(t, out.String(), "saved")
}

func TestImporter_Declined(t *testing.T) {
	persister := &stubPersister{}
	imp, out := newTestImporter(persister, "n\n")

	require.NoError(t, imp.run(context.Background(), "https://github.com/alice/tool"))
	assert.Empty(t, persister.repos)
	assert.Contains(t, out.String(), "Import cancelled.")
}

func TestImporter_AllIssuesWithFailure(t *testing.T) {
	persister := &stubPersister{reject: map[int]string{1: "Issue already exists"}}
	imp, out := newTestImporter(persister, "")
	imp.yes = true
	imp.all = true

	err := imp.run(context.Background(), "https://github.com/alice/tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 issues failed")
	assert.Len(t, persister.issues, 1)
	assert.Contains(t, out.String(), "failed: Issue already exists")
}

func TestImporter_NotOwner(t *testing.T) {
	persister := &stubPersister{}
	imp, out := newTestImporter(persister, "")

	err := imp.run(context.Background(), "https://github.com/bob/tool")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotOwner))
	assert.Contains(t, out.String(), "You can only import repositories you own")
	assert.Empty(t, persister.repos)
}

func TestImporter_JSONOutput(t *testing.T) {
	persister := &stubPersister{}
	imp, out := newTestImporter(persister, "")
	imp.yes = true
	imp.json = true
	imp.selected = []int{1, 9}

	require.NoError(t, imp.run(context.Background(), "https://github.com/alice/tool"))

	// the skip notice precedes the JSON document
	raw := out.String()
	raw = raw[strings.Index(raw, "{"):]

	var view stateView
	require.NoError(t, json.Unmarshal([]byte(raw), &view))
	assert.Equal(t, workflow.PhaseIssuesFetched, view.Phase)
	require.NotNil(t, view.RepositoryID)
	assert.Equal(t, "55", *view.RepositoryID)
	require.Len(t, view.Results, 1)
	assert.Equal(t, 1, view.Results[0].Number)
	assert.True(t, view.Results[0].Saved)
}

func TestParseIssueNumbers(t *testing.T) {
	numbers, err := parseIssueNumbers(" 1, #4,4 ,, 7")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 7}, numbers)

	numbers, err = parseIssueNumbers("")
	require.NoError(t, err)
	assert.Empty(t, numbers)

	_, err = parseIssueNumbers("1,x")
	assert.Error(t, err)

	_, err = parseIssueNumbers("0")
	assert.Error(t, err)
}

func TestPrompter_IssueNumbersRetriesOnBadInput(t *testing.T) {
	out := &bytes.Buffer{}
	p := newPrompter(strings.NewReader("abc\nall\n"), out)

	numbers, err := p.issueNumbers(openIssues())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, numbers)
	assert.Contains(t, out.String(), `invalid issue number "abc"`)
}

func TestPrompter_ConfirmAtEOF(t *testing.T) {
	p := newPrompter(strings.NewReader(""), &bytes.Buffer{})

	ok, err := p.confirm("Save?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResultText(t *testing.T) {
	assert.Equal(t, "pending", resultText(workflow.IssueResult{Pending: true}))
	assert.Equal(t, "saved", resultText(workflow.IssueResult{Saved: true, Message: "Issue #1 saved."}))
	assert.Equal(t, "failed: nope", resultText(workflow.IssueResult{Message: "nope"}))
}
