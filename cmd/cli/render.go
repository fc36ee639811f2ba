package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	"github.com/kurihiro0119/github-issue-importer/internal/workflow"
)

func renderRepository(w io.Writer, repo *domain.Repository) {
	if repo == nil {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	table.Append([]string{"Repository", repo.FullName})
	table.Append([]string{"URL", repo.URL})
	table.Append([]string{"Description", optional(repo.Description)})
	table.Append([]string{"Language", optional(repo.Language)})
	table.Append([]string{"Homepage", optional(repo.Homepage)})
	table.Append([]string{"Private", strconv.FormatBool(repo.IsPrivate)})
	table.Append([]string{"Stars", strconv.Itoa(repo.Stars)})
	table.Append([]string{"Watchers", strconv.Itoa(repo.Watchers)})
	table.Append([]string{"Forks", strconv.Itoa(repo.Forks)})
	table.Append([]string{"Topics", strings.Join(repo.Topics, ", ")})
	table.Append([]string{"Created", repo.CreatedAt.Format("2006-01-02")})
	table.Append([]string{"Updated", repo.UpdatedAt.Format("2006-01-02")})
	table.Render()
}

func renderIssues(w io.Writer, issues []*domain.Issue) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Title", "State"})
	for _, issue := range issues {
		table.Append([]string{fmt.Sprintf("%d", issue.Number), issue.Title, issue.State})
	}
	table.Render()
}

// renderResults shows the outcome of each attempted issue save
func renderResults(w io.Writer, issues []*domain.Issue, results map[int]workflow.IssueResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Title", "Result"})
	table.SetAutoWrapText(false)
	for _, issue := range issues {
		res, ok := results[issue.Number]
		if !ok {
			continue
		}
		table.Append([]string{fmt.Sprintf("%d", issue.Number), issue.Title, resultText(res)})
	}
	table.Render()
}

func resultText(res workflow.IssueResult) string {
	switch {
	case res.Pending:
		return "pending"
	case res.Saved:
		return "saved"
	case res.Message != "":
		return "failed: " + res.Message
	default:
		return "failed"
	}
}

func renderRepositoryList(w io.Writer, repos []*domain.Repository) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Repository", "Language", "Stars", "Private"})
	for _, repo := range repos {
		table.Append([]string{
			repo.ID,
			repo.FullName,
			optional(repo.Language),
			strconv.Itoa(repo.Stars),
			strconv.FormatBool(repo.IsPrivate),
		})
	}
	table.Render()
}

func renderStoredIssues(w io.Writer, issues []*domain.StoredIssue) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Title", "State", "Imported"})
	for _, issue := range issues {
		table.Append([]string{
			fmt.Sprintf("%d", issue.Number),
			issue.Title,
			issue.State,
			issue.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// stateView is the JSON form of a workflow snapshot
type stateView struct {
	Phase        workflow.Phase     `json:"phase"`
	Status       *string            `json:"status"`
	Repository   *domain.Repository `json:"repository"`
	RepositoryID *string            `json:"repositoryId"`
	Issues       []*domain.Issue    `json:"issues"`
	Results      []issueResultView  `json:"results"`
}

type issueResultView struct {
	Number  int    `json:"number"`
	Saved   bool   `json:"saved"`
	Message string `json:"message,omitempty"`
}

func newStateView(s workflow.State) stateView {
	view := stateView{
		Phase:        s.Phase,
		Status:       s.StatusMessage,
		Repository:   s.Repository,
		RepositoryID: s.RepositoryID,
		Issues:       s.Issues,
		Results:      []issueResultView{},
	}
	for _, issue := range s.Issues {
		if res, ok := s.IssueResults[issue.Number]; ok {
			view.Results = append(view.Results, issueResultView{Number: issue.Number, Saved: res.Saved, Message: res.Message})
		}
	}
	return view
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
