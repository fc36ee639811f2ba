package collector

import (
	"context"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
)

// Collector defines the read operations the importer needs from GitHub
type Collector interface {
	// GetRepository retrieves repository metadata, rejecting forks
	GetRepository(ctx context.Context, owner, name string) (*domain.Repository, error)

	// ListOpenIssues retrieves the first page of open issues, excluding pull requests
	ListOpenIssues(ctx context.Context, owner, name string) ([]*domain.Issue, error)
}
