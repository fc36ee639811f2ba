package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v55/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
)

// githubCollector implements Collector using GitHub API
type githubCollector struct {
	client      *github.Client
	rateTracker RateTracker
	logger      *logrus.Logger
}

// NewGitHubCollector creates a new GitHub collector.
// An empty token makes unauthenticated requests; an empty baseURL targets api.github.com.
func NewGitHubCollector(token, baseURL string, logger *logrus.Logger) (Collector, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	client := github.NewClient(httpClient)

	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &githubCollector{
		client:      client,
		rateTracker: NewRateTracker(),
		logger:      logger,
	}, nil
}

// GetRepository retrieves repository metadata and projects it into a domain.Repository
func (c *githubCollector) GetRepository(ctx context.Context, owner, name string) (*domain.Repository, error) {
	repo, resp, err := c.client.Repositories.Get(ctx, owner, name)
	c.rateTracker.Update(resp)
	if err != nil {
		c.logFailure("get_repository", owner, name, resp, err)
		return nil, apperrors.NewRemoteFetchFailedError(fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err))
	}

	if repo.GetFork() {
		c.logger.WithFields(logrus.Fields{
			"owner": owner,
			"repo":  name,
		}).Info("rejected forked repository")
		return nil, apperrors.NewForkNotAllowedError(repo.GetFullName())
	}

	return toDomainRepository(repo), nil
}

// ListOpenIssues retrieves the first page of open issues in API order
func (c *githubCollector) ListOpenIssues(ctx context.Context, owner, name string) ([]*domain.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State: "open",
	}

	issues, resp, err := c.client.Issues.ListByRepo(ctx, owner, name, opts)
	c.rateTracker.Update(resp)
	if err != nil {
		c.logFailure("list_issues", owner, name, resp, err)
		return nil, apperrors.NewIssueFetchFailedError(fmt.Errorf("failed to list issues for %s/%s: %w", owner, name, err))
	}

	return filterIssues(issues), nil
}

// filterIssues drops pull requests, which the issues endpoint also returns
func filterIssues(issues []*github.Issue) []*domain.Issue {
	result := make([]*domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue == nil || issue.IsPullRequest() {
			continue
		}
		result = append(result, &domain.Issue{
			RemoteID: strconv.FormatInt(issue.GetID(), 10),
			Title:    issue.GetTitle(),
			Body:     optionalString(issue.Body),
			State:    issue.GetState(),
			Number:   issue.GetNumber(),
		})
	}
	return result
}

// toDomainRepository converts the API payload; missing optional strings stay nil
func toDomainRepository(repo *github.Repository) *domain.Repository {
	topics := make([]string, 0, len(repo.Topics))
	topics = append(topics, repo.Topics...)

	return &domain.Repository{
		ID:          strconv.FormatInt(repo.GetID(), 10),
		Name:        repo.GetName(),
		Owner:       repo.GetOwner().GetLogin(),
		FullName:    repo.GetFullName(),
		URL:         repo.GetHTMLURL(),
		Description: optionalString(repo.Description),
		IsPrivate:   repo.GetPrivate(),
		Homepage:    optionalString(repo.Homepage),
		Language:    optionalString(repo.Language),
		Stars:       repo.GetStargazersCount(),
		Watchers:    repo.GetWatchersCount(),
		Forks:       repo.GetForksCount(),
		Topics:      topics,
		AvatarURL:   repo.GetOwner().GetAvatarURL(),
		CreatedAt:   repo.GetCreatedAt().Time,
		UpdatedAt:   repo.GetUpdatedAt().Time,
	}
}

func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// logFailure records the detail that the user-facing error hides
func (c *githubCollector) logFailure(step, owner, name string, resp *github.Response, err error) {
	fields := logrus.Fields{
		"step":  step,
		"owner": owner,
		"repo":  name,
	}
	if resp != nil && resp.Response != nil {
		fields["status"] = resp.StatusCode
	}
	if remaining, reset, ok := c.rateTracker.Snapshot(); ok {
		fields["rate_remaining"] = remaining
		fields["rate_reset"] = reset
	}
	c.logger.WithFields(fields).WithError(err).Warn("GitHub request failed")
}
