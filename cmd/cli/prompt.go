package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) readLine(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but y or yes is no
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.readLine(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// issueNumbers asks which issues to import. An empty answer imports none.
func (p *prompter) issueNumbers(issues []*domain.Issue) ([]int, error) {
	for {
		answer, err := p.readLine("Issue numbers to import (e.g. 1,4 or 'all'; empty to skip): ")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(answer, "all") {
			numbers := make([]int, 0, len(issues))
			for _, issue := range issues {
				numbers = append(numbers, issue.Number)
			}
			return numbers, nil
		}
		numbers, err := parseIssueNumbers(answer)
		if err == nil {
			return numbers, nil
		}
		fmt.Fprintln(p.out, err)
	}
}

// parseIssueNumbers parses "1, 4,#7" into [1 4 7], dropping repeats
func parseIssueNumbers(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var numbers []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), "#")
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid issue number %q", part)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}
	return numbers, nil
}
