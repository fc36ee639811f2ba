package workflow

import (
	"github.com/kurihiro0119/github-issue-importer/internal/domain"
)

// Phase is a named step of the import workflow
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseFetching            Phase = "fetching"
	PhaseFetched             Phase = "fetched"
	PhaseSaving              Phase = "saving"
	PhaseSavedAwaitingIssues Phase = "saved-awaiting-issues"
	PhaseIssuesFetched       Phase = "issues-fetched"
)

// transitions lists the phases reachable from each phase.
// Fetching is reachable from everywhere because a new fetch resets the workflow.
var transitions = map[Phase][]Phase{
	PhaseIdle:                {PhaseFetching},
	PhaseFetching:            {PhaseIdle, PhaseFetched},
	PhaseFetched:             {PhaseFetching, PhaseSaving},
	PhaseSaving:              {PhaseFetching, PhaseFetched, PhaseSavedAwaitingIssues, PhaseIssuesFetched},
	PhaseSavedAwaitingIssues: {PhaseFetching, PhaseSaving, PhaseSavedAwaitingIssues, PhaseIssuesFetched},
	PhaseIssuesFetched:       {PhaseFetching, PhaseSaving, PhaseSavedAwaitingIssues},
}

func canTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// IssueResult is the outcome of the latest save of one issue
type IssueResult struct {
	Pending bool
	Saved   bool
	Message string
}

// State is a snapshot of the workflow for rendering
type State struct {
	Phase         Phase
	StatusMessage *string
	Repository    *domain.Repository
	Issues        []*domain.Issue
	RepositoryID  *string
	// IssueResults is keyed by issue number
	IssueResults map[int]IssueResult
}

func initialState() State {
	return State{
		Phase:        PhaseIdle,
		Issues:       []*domain.Issue{},
		IssueResults: map[int]IssueResult{},
	}
}

func (s State) clone() State {
	c := State{
		Phase:        s.Phase,
		Repository:   s.Repository.Clone(),
		Issues:       make([]*domain.Issue, 0, len(s.Issues)),
		IssueResults: make(map[int]IssueResult, len(s.IssueResults)),
	}
	if s.StatusMessage != nil {
		msg := *s.StatusMessage
		c.StatusMessage = &msg
	}
	if s.RepositoryID != nil {
		id := *s.RepositoryID
		c.RepositoryID = &id
	}
	for _, issue := range s.Issues {
		c.Issues = append(c.Issues, issue.Clone())
	}
	for k, v := range s.IssueResults {
		c.IssueResults[k] = v
	}
	return c
}

// Status returns the status message or an empty string
func (s State) Status() string {
	if s.StatusMessage == nil {
		return ""
	}
	return *s.StatusMessage
}
