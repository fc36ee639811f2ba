// Package workflow sequences the repository import: link check, GitHub fetch,
// repository save, issue discovery and per-issue saves.
//
// A Workflow holds the state of one import session. Network calls are made
// without the lock held; a response that arrives after the session was reset
// by a new Fetch, or after Close, is dropped.
package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-issue-importer/internal/collector"
	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/link"
)

// ErrClosed is returned by every operation after Close
var ErrClosed = errors.New("workflow: closed")

// Persister saves records to the backend
type Persister interface {
	CreateRepository(ctx context.Context, repo *domain.Repository) error
	CreateIssue(ctx context.Context, issue *domain.Issue) error
}

// Workflow is one import session for a signed-in user
type Workflow struct {
	collector collector.Collector
	persister Persister
	username  string
	logger    *logrus.Entry

	mu            sync.Mutex
	state         State
	fetching      bool
	loadingIssues bool
	generation    uint64
	closed        bool
}

// New creates a workflow. An empty username means nobody is signed in.
func New(coll collector.Collector, persister Persister, username string, logger *logrus.Logger) *Workflow {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Workflow{
		collector: coll,
		persister: persister,
		username:  username,
		logger:    logger.WithField("session", uuid.New().String()),
		state:     initialState(),
	}
}

// Snapshot returns a copy of the current state
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

// Close discards the session. Responses still in flight are ignored.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.generation++
	w.state = initialState()
}

// Fetch resets the session and loads the repository behind raw.
// Only one fetch may run at a time.
func (w *Workflow) Fetch(ctx context.Context, raw string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.fetching {
		w.mu.Unlock()
		return apperrors.NewFetchInProgressError()
	}
	w.fetching = true
	w.loadingIssues = false
	w.generation++
	gen := w.generation
	w.state = initialState()
	w.state.Phase = PhaseFetching
	w.setStatus(msgFetching)
	w.mu.Unlock()

	repo, err := w.fetchRepository(ctx, raw)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.fetching = false
	if w.stale(gen) {
		return err
	}

	if err != nil {
		w.fail("fetch", err)
		w.state.Phase = PhaseIdle
		return err
	}

	repo.Username = w.username
	w.state.Repository = repo
	w.state.Phase = PhaseFetched
	w.setStatus(msgFetched(repo))
	w.logger.WithField("repo", repo.FullName).Info("repository fetched")
	return nil
}

func (w *Workflow) fetchRepository(ctx context.Context, raw string) (*domain.Repository, error) {
	l, err := link.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if err := link.VerifyOwner(l.Owner, w.username); err != nil {
		return nil, err
	}
	return w.collector.GetRepository(ctx, l.Owner, l.Name)
}

// SaveRepository persists the fetched repository and then loads its open issues.
// An issue fetch failure is returned but leaves the repository saved.
func (w *Workflow) SaveRepository(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.state.Repository == nil {
		err := apperrors.NewNoRepositoryError()
		w.fail("save_repository", err)
		w.mu.Unlock()
		return err
	}
	if w.loadingIssues {
		w.mu.Unlock()
		return apperrors.NewFetchInProgressError()
	}
	if err := w.transition(PhaseSaving); err != nil {
		w.mu.Unlock()
		return err
	}
	prev := w.state.Phase
	w.state.Phase = PhaseSaving
	w.setStatus(msgSaving)
	gen := w.generation
	repo := w.state.Repository.Clone()
	w.mu.Unlock()

	err := w.persister.CreateRepository(ctx, repo)

	w.mu.Lock()
	if w.stale(gen) {
		w.mu.Unlock()
		return err
	}
	if err != nil {
		w.fail("save_repository", err)
		w.state.Phase = prev
		w.mu.Unlock()
		return err
	}

	id := repo.ID
	w.state.RepositoryID = &id
	w.logger.WithField("repository_id", id).Info("repository saved")
	w.mu.Unlock()

	return w.loadIssues(ctx, gen, repo.Owner, repo.Name, false)
}

// RefreshIssues reloads the issue list of the saved repository
func (w *Workflow) RefreshIssues(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.state.RepositoryID == nil || w.state.Repository == nil {
		err := apperrors.NewRepositoryNotPersistedError()
		w.fail("refresh_issues", err)
		w.mu.Unlock()
		return err
	}
	if w.state.Phase != PhaseSavedAwaitingIssues && w.state.Phase != PhaseIssuesFetched {
		w.mu.Unlock()
		return apperrors.NewInvalidTransitionError(string(w.state.Phase), string(PhaseSavedAwaitingIssues))
	}
	gen := w.generation
	owner, name := w.state.Repository.Owner, w.state.Repository.Name
	w.mu.Unlock()

	return w.loadIssues(ctx, gen, owner, name, true)
}

// loadIssues moves to saved-awaiting-issues and replaces the issue list.
// With restore set, a failure puts back the phase and issues held before the call.
func (w *Workflow) loadIssues(ctx context.Context, gen uint64, owner, name string, restore bool) error {
	w.mu.Lock()
	if w.stale(gen) {
		w.mu.Unlock()
		return nil
	}
	if w.loadingIssues {
		w.mu.Unlock()
		return apperrors.NewFetchInProgressError()
	}
	if err := w.transition(PhaseSavedAwaitingIssues); err != nil {
		w.mu.Unlock()
		return err
	}
	w.loadingIssues = true
	prevPhase, prevIssues := w.state.Phase, w.state.Issues
	w.state.Phase = PhaseSavedAwaitingIssues
	w.state.Issues = []*domain.Issue{}
	w.setStatus(msgFetchingIssue)
	w.mu.Unlock()

	issues, err := w.collector.ListOpenIssues(ctx, owner, name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stale(gen) {
		return err
	}
	w.loadingIssues = false

	if err != nil {
		w.fail("fetch_issues", err)
		if restore {
			w.state.Phase = prevPhase
			w.state.Issues = prevIssues
		}
		return err
	}

	for _, issue := range issues {
		issue.RepositoryID = *w.state.RepositoryID
	}
	w.state.Issues = issues
	w.state.Phase = PhaseIssuesFetched
	w.setStatus(msgIssuesFound(len(issues)))
	return nil
}

// SaveIssue persists one issue under the saved repository.
// Saves are independent: any subset, any order, repeatedly.
func (w *Workflow) SaveIssue(ctx context.Context, issue *domain.Issue) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if issue == nil {
		w.mu.Unlock()
		return apperrors.NewBadRequestError("issue is required")
	}
	if w.state.RepositoryID == nil {
		err := apperrors.NewRepositoryNotPersistedError()
		w.fail("save_issue", err)
		w.mu.Unlock()
		return err
	}
	payload := issue.Clone()
	payload.RepositoryID = *w.state.RepositoryID
	gen := w.generation
	w.state.IssueResults[issue.Number] = IssueResult{Pending: true}
	w.setStatus(msgSavingIssue(issue.Number))
	w.mu.Unlock()

	err := w.persister.CreateIssue(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stale(gen) {
		return err
	}

	if err != nil {
		if !apperrors.Is(err, apperrors.ErrCodeIssueSaveFailed) {
			err = apperrors.NewIssueSaveFailedError(issue.Number, "", err)
		}
		w.fail("save_issue", err)
		w.state.IssueResults[issue.Number] = IssueResult{Message: apperrors.UserMessage(err)}
		return err
	}

	msg := msgIssueSaved(issue.Number)
	w.state.IssueResults[issue.Number] = IssueResult{Saved: true, Message: msg}
	w.setStatus(msg)
	return nil
}

// transition checks that the current phase may move to next; call with mu held
func (w *Workflow) transition(next Phase) error {
	if !canTransition(w.state.Phase, next) {
		return apperrors.NewInvalidTransitionError(string(w.state.Phase), string(next))
	}
	return nil
}

// stale reports whether a response belongs to a discarded session; call with mu held
func (w *Workflow) stale(gen uint64) bool {
	return w.closed || gen != w.generation
}

// fail logs err and shows its user message; call with mu held
func (w *Workflow) fail(step string, err error) {
	entry := w.logger.WithField("step", step).WithError(err)
	if appErr, ok := apperrors.As(err); ok {
		entry = entry.WithField("code", appErr.Code)
	}
	entry.Warn("import step failed")
	w.setStatus(apperrors.UserMessage(err))
}

func (w *Workflow) setStatus(msg string) {
	w.state.StatusMessage = &msg
}
