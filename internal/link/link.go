// Package link turns user-supplied GitHub links into repository coordinates
// and checks them against the signed-in user.
package link

import (
	"regexp"
	"strings"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
)

var repoLinkPattern = regexp.MustCompile(`^https://github\.com/([^/?#\s]+)/([^/?#\s]+)$`)

// Normalize parses raw into an owner/name pair.
// Accepted form is https://github.com/<owner>/<repo> with an optional
// trailing slash and .git suffix. Case is preserved.
func Normalize(raw string) (*domain.RepositoryLink, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	m := repoLinkPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, apperrors.NewInvalidLinkFormatError(raw)
	}

	// "x.git.git" would otherwise normalize to a name that still carries the suffix
	if strings.HasSuffix(m[2], ".git") {
		return nil, apperrors.NewInvalidLinkFormatError(raw)
	}

	return &domain.RepositoryLink{Owner: m[1], Name: m[2]}, nil
}

// URL returns the canonical link for l; Normalize(URL(l)) yields l again.
func URL(l domain.RepositoryLink) string {
	return "https://github.com/" + l.Owner + "/" + l.Name
}
