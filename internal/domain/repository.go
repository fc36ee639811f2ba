package domain

import "time"

// RepositoryLink is a user-supplied repository link reduced to its owner and name
type RepositoryLink struct {
	Owner string
	Name  string
}

// FullName returns "owner/name"
func (l RepositoryLink) FullName() string {
	return l.Owner + "/" + l.Name
}

// Repository represents a GitHub repository registered with the backend.
// ID is GitHub's numeric repository id in decimal string form.
type Repository struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Owner       string    `json:"owner"`
	FullName    string    `json:"fullName"`
	URL         string    `json:"url"`
	Description *string   `json:"description"`
	IsPrivate   bool      `json:"isPrivate"`
	Username    string    `json:"username"`
	Homepage    *string   `json:"homepage"`
	Language    *string   `json:"language"`
	Stars       int       `json:"stars"`
	Watchers    int       `json:"watchers"`
	Forks       int       `json:"forks"`
	Topics      []string  `json:"topics"`
	AvatarURL   string    `json:"avatarUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the repository
func (r *Repository) Clone() *Repository {
	if r == nil {
		return nil
	}
	c := *r
	c.Description = cloneString(r.Description)
	c.Homepage = cloneString(r.Homepage)
	c.Language = cloneString(r.Language)
	c.Topics = append([]string{}, r.Topics...)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
