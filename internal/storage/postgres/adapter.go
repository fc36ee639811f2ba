package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connStr string) (storage.Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS repositories (
		id VARCHAR(32) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		owner VARCHAR(255) NOT NULL,
		full_name VARCHAR(511) NOT NULL,
		url TEXT NOT NULL,
		description TEXT,
		is_private BOOLEAN NOT NULL,
		username VARCHAR(255) NOT NULL,
		homepage TEXT,
		language VARCHAR(100),
		stars INTEGER NOT NULL DEFAULT 0,
		watchers INTEGER NOT NULL DEFAULT 0,
		forks INTEGER NOT NULL DEFAULT 0,
		topics JSONB NOT NULL DEFAULT '[]',
		avatar_url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_repositories_username ON repositories(LOWER(username));

	CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY,
		repository_id VARCHAR(32) NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		number INTEGER NOT NULL,
		title TEXT NOT NULL,
		body TEXT,
		state VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (repository_id, number)
	);

	CREATE INDEX IF NOT EXISTS idx_issues_repository_id ON issues(repository_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRepository saves a repository, replacing any row with the same ID
func (s *postgresStorage) SaveRepository(ctx context.Context, repo *domain.Repository) error {
	topics, err := json.Marshal(storage.TopicsOrEmpty(repo.Topics))
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `
		INSERT INTO repositories (
			id, name, owner, full_name, url, description, is_private, username,
			homepage, language, stars, watchers, forks, topics, avatar_url,
			created_at, updated_at, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			owner = EXCLUDED.owner,
			full_name = EXCLUDED.full_name,
			url = EXCLUDED.url,
			description = EXCLUDED.description,
			is_private = EXCLUDED.is_private,
			username = EXCLUDED.username,
			homepage = EXCLUDED.homepage,
			language = EXCLUDED.language,
			stars = EXCLUDED.stars,
			watchers = EXCLUDED.watchers,
			forks = EXCLUDED.forks,
			topics = EXCLUDED.topics,
			avatar_url = EXCLUDED.avatar_url,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			synced_at = NOW()
	`

	_, err = s.db.ExecContext(ctx, query,
		repo.ID, repo.Name, repo.Owner, repo.FullName, repo.URL, repo.Description,
		repo.IsPrivate, repo.Username, repo.Homepage, repo.Language,
		repo.Stars, repo.Watchers, repo.Forks, string(topics), repo.AvatarURL,
		repo.CreatedAt, repo.UpdatedAt,
	)
	return err
}

const repositoryColumns = `id, name, owner, full_name, url, description, is_private, username,
	homepage, language, stars, watchers, forks, topics, avatar_url, created_at, updated_at`

// GetRepository retrieves a repository by ID
func (s *postgresStorage) GetRepository(ctx context.Context, id string) (*domain.Repository, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+repositoryColumns+` FROM repositories WHERE id = $1`, id)

	repo, err := scanRepository(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("repository")
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// GetRepositoriesByUser retrieves all repositories registered by a user
func (s *postgresStorage) GetRepositoriesByUser(ctx context.Context, username string) ([]*domain.Repository, error) {
	query := `SELECT ` + repositoryColumns + `
		FROM repositories
		WHERE LOWER(username) = LOWER($1)
		ORDER BY full_name`

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*domain.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	return repos, rows.Err()
}

// SaveIssue saves an issue; a second save of the same number updates the row
func (s *postgresStorage) SaveIssue(ctx context.Context, issue *domain.Issue) (*domain.StoredIssue, error) {
	now := time.Now()
	query := `
		INSERT INTO issues (id, repository_id, number, title, body, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (repository_id, number) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at
		RETURNING id, repository_id, number, title, body, state, created_at, updated_at
	`

	row := s.db.QueryRowContext(ctx, query,
		uuid.New().String(), issue.RepositoryID, issue.Number, issue.Title, issue.Body, issue.State, now, now,
	)
	return scanIssue(row)
}

// GetIssues retrieves the issues of a repository ordered by number descending
func (s *postgresStorage) GetIssues(ctx context.Context, repositoryID string) ([]*domain.StoredIssue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repository_id, number, title, body, state, created_at, updated_at
		FROM issues
		WHERE repository_id = $1
		ORDER BY number DESC
	`, repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []*domain.StoredIssue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}

	return issues, rows.Err()
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRepository(row scanner) (*domain.Repository, error) {
	var repo domain.Repository
	var description, homepage, language sql.NullString
	var topics []byte

	err := row.Scan(
		&repo.ID, &repo.Name, &repo.Owner, &repo.FullName, &repo.URL, &description,
		&repo.IsPrivate, &repo.Username, &homepage, &language,
		&repo.Stars, &repo.Watchers, &repo.Forks, &topics, &repo.AvatarURL,
		&repo.CreatedAt, &repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	repo.Description = storage.NullString(description)
	repo.Homepage = storage.NullString(homepage)
	repo.Language = storage.NullString(language)
	if err := json.Unmarshal(topics, &repo.Topics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
	}
	repo.Topics = storage.TopicsOrEmpty(repo.Topics)

	return &repo, nil
}

func scanIssue(row scanner) (*domain.StoredIssue, error) {
	var issue domain.StoredIssue
	var body sql.NullString

	err := row.Scan(
		&issue.ID, &issue.RepositoryID, &issue.Number, &issue.Title, &body, &issue.State,
		&issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	issue.Body = storage.NullString(body)
	return &issue, nil
}
