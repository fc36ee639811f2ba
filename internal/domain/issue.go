package domain

import "time"

// Issue represents an open GitHub issue imported into a registered repository
type Issue struct {
	// RemoteID is GitHub's issue id; it is not part of the backend payload.
	RemoteID     string  `json:"-"`
	Title        string  `json:"title"`
	Body         *string `json:"body"`
	State        string  `json:"state"`
	Number       int     `json:"number"`
	RepositoryID string  `json:"repositoryId"`
}

// Clone returns a deep copy of the issue
func (i *Issue) Clone() *Issue {
	if i == nil {
		return nil
	}
	c := *i
	c.Body = cloneString(i.Body)
	return &c
}

// StoredIssue is an issue row as kept by the backend store
type StoredIssue struct {
	ID string `json:"id"`
	Issue
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
