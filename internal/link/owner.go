package link

import (
	"strings"

	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
)

// VerifyOwner checks that owner is the signed-in username, ignoring case.
// An empty username means nobody is signed in.
//
// This only gates the UI; the backend re-checks ownership on save.
func VerifyOwner(owner, username string) error {
	if username == "" {
		return apperrors.NewNotAuthenticatedError()
	}
	if !strings.EqualFold(owner, username) {
		return apperrors.NewNotOwnerError(owner, username)
	}
	return nil
}
