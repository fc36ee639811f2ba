package main

import (
	"context"
	"fmt"
	"io"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	"github.com/kurihiro0119/github-issue-importer/internal/workflow"
)

// importer drives one workflow session from the terminal
type importer struct {
	wf       *workflow.Workflow
	out      io.Writer
	prompter *prompter
	yes      bool
	all      bool
	selected []int
	json     bool
}

func (i *importer) run(ctx context.Context, link string) error {
	if err := i.wf.Fetch(ctx, link); err != nil {
		i.status()
		return err
	}
	snap := i.wf.Snapshot()
	i.status()
	if !i.json {
		renderRepository(i.out, snap.Repository)
	}

	if !i.yes {
		ok, err := i.prompter.confirm(fmt.Sprintf("Save %s?", snap.Repository.FullName))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(i.out, "Import cancelled.")
			return nil
		}
	}

	if err := i.wf.SaveRepository(ctx); err != nil {
		i.status()
		return err
	}
	snap = i.wf.Snapshot()
	i.status()
	if !i.json && len(snap.Issues) > 0 {
		renderIssues(i.out, snap.Issues)
	}

	numbers, err := i.chooseIssues(snap.Issues)
	if err != nil {
		return err
	}

	failed := 0
	for _, issue := range pickIssues(snap.Issues, numbers, i.out) {
		if err := i.wf.SaveIssue(ctx, issue); err != nil {
			failed++
		}
	}

	final := i.wf.Snapshot()
	if i.json {
		if err := printJSON(i.out, newStateView(final)); err != nil {
			return err
		}
	} else if len(final.IssueResults) > 0 {
		renderResults(i.out, final.Issues, final.IssueResults)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d issues failed to import", failed, len(numbers))
	}
	return nil
}

func (i *importer) chooseIssues(issues []*domain.Issue) ([]int, error) {
	if len(issues) == 0 {
		return nil, nil
	}
	switch {
	case i.all:
		numbers := make([]int, 0, len(issues))
		for _, issue := range issues {
			numbers = append(numbers, issue.Number)
		}
		return numbers, nil
	case len(i.selected) > 0:
		return i.selected, nil
	case i.yes:
		return nil, nil
	}
	return i.prompter.issueNumbers(issues)
}

// status prints the latest status message unless JSON output was requested
func (i *importer) status() {
	if i.json {
		return
	}
	if msg := i.wf.Snapshot().Status(); msg != "" {
		fmt.Fprintln(i.out, msg)
	}
}

// pickIssues returns the fetched issues matching numbers, in the order given
func pickIssues(issues []*domain.Issue, numbers []int, out io.Writer) []*domain.Issue {
	byNumber := make(map[int]*domain.Issue, len(issues))
	for _, issue := range issues {
		byNumber[issue.Number] = issue
	}

	picked := make([]*domain.Issue, 0, len(numbers))
	for _, n := range numbers {
		issue, ok := byNumber[n]
		if !ok {
			fmt.Fprintf(out, "Skipping #%d: not an open issue of this repository.\n", n)
			continue
		}
		picked = append(picked, issue)
	}
	return picked
}
