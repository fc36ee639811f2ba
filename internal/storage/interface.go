package storage

import (
	"context"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
)

// Storage is the abstract interface for the persistence layer
type Storage interface {
	// Repository operations; SaveRepository upserts by ID
	SaveRepository(ctx context.Context, repo *domain.Repository) error
	GetRepository(ctx context.Context, id string) (*domain.Repository, error)
	GetRepositoriesByUser(ctx context.Context, username string) ([]*domain.Repository, error)

	// Issue operations; SaveIssue upserts by (repository ID, number)
	SaveIssue(ctx context.Context, issue *domain.Issue) (*domain.StoredIssue, error)
	GetIssues(ctx context.Context, repositoryID string) ([]*domain.StoredIssue, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
