// Package registry is the backend side of the import: it re-checks what the
// client sent and writes repositories and issues to storage.
package registry

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-issue-importer/internal/collector"
	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/link"
	"github.com/kurihiro0119/github-issue-importer/internal/storage"
)

// Recorder receives save and rejection events
type Recorder interface {
	RecordRepositorySaved(private bool)
	RecordIssueSaved()
	RecordRejection(code string)
}

// Registry defines the backend operations on imported records
type Registry interface {
	// RegisterRepository validates and upserts a repository record
	RegisterRepository(ctx context.Context, repo *domain.Repository) (*domain.Repository, error)

	// AddIssue validates and upserts an issue under an existing repository
	AddIssue(ctx context.Context, issue *domain.Issue) (*domain.StoredIssue, error)

	// GetRepository retrieves one repository
	GetRepository(ctx context.Context, id string) (*domain.Repository, error)

	// ListRepositories retrieves the repositories imported by a user
	ListRepositories(ctx context.Context, username string) ([]*domain.Repository, error)

	// ListIssues retrieves the imported issues of a repository
	ListIssues(ctx context.Context, repositoryID string) ([]*domain.StoredIssue, error)
}

// registry implements the Registry interface
type registry struct {
	storage   storage.Storage
	collector collector.Collector
	recorder  Recorder
	logger    *logrus.Logger
}

// NewRegistry creates a new registry. A nil collector skips the GitHub
// re-fetch; a nil recorder disables metrics.
func NewRegistry(store storage.Storage, coll collector.Collector, recorder Recorder, logger *logrus.Logger) Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &registry{
		storage:   store,
		collector: coll,
		recorder:  recorder,
		logger:    logger,
	}
}

// RegisterRepository validates and upserts a repository record
func (r *registry) RegisterRepository(ctx context.Context, repo *domain.Repository) (*domain.Repository, error) {
	if err := validateRepository(repo); err != nil {
		return nil, r.reject(err)
	}
	if err := link.VerifyOwner(repo.Owner, repo.Username); err != nil {
		return nil, r.reject(err)
	}

	if r.collector != nil {
		// GetRepository rejects forks itself
		fetched, err := r.collector.GetRepository(ctx, repo.Owner, repo.Name)
		if err != nil {
			return nil, r.reject(err)
		}
		if fetched.ID != repo.ID {
			return nil, r.reject(apperrors.NewBadRequestError("id does not match the repository on GitHub"))
		}
		if err := link.VerifyOwner(fetched.Owner, repo.Username); err != nil {
			return nil, r.reject(err)
		}
	}

	// an existing row may only be replaced by the user who imported it
	existing, err := r.storage.GetRepository(ctx, repo.ID)
	switch {
	case err == nil:
		if !strings.EqualFold(existing.Username, repo.Username) {
			return nil, r.reject(apperrors.NewNotOwnerError(existing.Owner, repo.Username))
		}
	case !apperrors.IsNotFound(err):
		return nil, apperrors.NewInternalError("Failed to load repository", err)
	}

	record := repo.Clone()
	record.Topics = storage.TopicsOrEmpty(record.Topics)
	if record.FullName == "" {
		record.FullName = record.Owner + "/" + record.Name
	}
	if err := r.storage.SaveRepository(ctx, record); err != nil {
		return nil, apperrors.NewInternalError("Failed to save repository", err)
	}

	r.logger.WithFields(logrus.Fields{
		"repository_id": record.ID,
		"repo":          record.FullName,
		"username":      record.Username,
	}).Info("repository registered")
	if r.recorder != nil {
		r.recorder.RecordRepositorySaved(record.IsPrivate)
	}

	return record, nil
}

// AddIssue validates and upserts an issue under an existing repository
func (r *registry) AddIssue(ctx context.Context, issue *domain.Issue) (*domain.StoredIssue, error) {
	if err := validateIssue(issue); err != nil {
		return nil, r.reject(err)
	}

	if _, err := r.storage.GetRepository(ctx, issue.RepositoryID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, r.reject(err)
		}
		return nil, apperrors.NewInternalError("Failed to load repository", err)
	}

	stored, err := r.storage.SaveIssue(ctx, issue)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to save issue", err)
	}

	r.logger.WithFields(logrus.Fields{
		"repository_id": issue.RepositoryID,
		"number":        issue.Number,
		"issue_id":      stored.ID,
	}).Info("issue saved")
	if r.recorder != nil {
		r.recorder.RecordIssueSaved()
	}

	return stored, nil
}

// GetRepository retrieves one repository
func (r *registry) GetRepository(ctx context.Context, id string) (*domain.Repository, error) {
	return r.storage.GetRepository(ctx, id)
}

// ListRepositories retrieves the repositories imported by a user
func (r *registry) ListRepositories(ctx context.Context, username string) ([]*domain.Repository, error) {
	repos, err := r.storage.GetRepositoriesByUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if repos == nil {
		repos = []*domain.Repository{}
	}
	return repos, nil
}

// ListIssues retrieves the imported issues of a repository
func (r *registry) ListIssues(ctx context.Context, repositoryID string) ([]*domain.StoredIssue, error) {
	if _, err := r.storage.GetRepository(ctx, repositoryID); err != nil {
		return nil, err
	}
	issues, err := r.storage.GetIssues(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []*domain.StoredIssue{}
	}
	return issues, nil
}

func (r *registry) reject(err error) error {
	if appErr, ok := apperrors.As(err); ok {
		r.logger.WithField("code", appErr.Code).WithError(err).Warn("import rejected")
		if r.recorder != nil {
			r.recorder.RecordRejection(string(appErr.Code))
		}
	}
	return err
}

func validateRepository(repo *domain.Repository) error {
	switch {
	case repo == nil:
		return apperrors.NewBadRequestError("repository is required")
	case strings.TrimSpace(repo.ID) == "":
		return apperrors.NewBadRequestError("id is required")
	case strings.TrimSpace(repo.Name) == "":
		return apperrors.NewBadRequestError("name is required")
	case strings.TrimSpace(repo.Owner) == "":
		return apperrors.NewBadRequestError("owner is required")
	case strings.TrimSpace(repo.Username) == "":
		return apperrors.NewNotAuthenticatedError()
	}
	return nil
}

func validateIssue(issue *domain.Issue) error {
	switch {
	case issue == nil:
		return apperrors.NewBadRequestError("issue is required")
	case strings.TrimSpace(issue.RepositoryID) == "":
		return apperrors.NewBadRequestError("repositoryId is required")
	case strings.TrimSpace(issue.Title) == "":
		return apperrors.NewBadRequestError("title is required")
	case issue.Number <= 0:
		return apperrors.NewBadRequestError("number must be positive")
	}
	if issue.State == "" {
		issue.State = "open"
	}
	return nil
}
