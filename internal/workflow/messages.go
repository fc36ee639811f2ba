package workflow

import (
	"fmt"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
)

const (
	msgFetching      = "Fetching repository..."
	msgSaving        = "Saving repository..."
	msgFetchingIssue = "Repository saved. Fetching issues..."
)

func msgFetched(repo *domain.Repository) string {
	return fmt.Sprintf("Fetched %s. Review and save to import.", repo.FullName)
}

func msgIssuesFound(n int) string {
	switch n {
	case 0:
		return "Repository saved. No open issues found."
	case 1:
		return "Found 1 open issue."
	default:
		return fmt.Sprintf("Found %d open issues.", n)
	}
}

func msgSavingIssue(number int) string {
	return fmt.Sprintf("Saving issue #%d...", number)
}

func msgIssueSaved(number int) string {
	return fmt.Sprintf("Issue #%d saved.", number)
}
