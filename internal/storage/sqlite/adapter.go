package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS repositories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner TEXT NOT NULL,
		full_name TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT,
		is_private INTEGER NOT NULL,
		username TEXT NOT NULL,
		homepage TEXT,
		language TEXT,
		stars INTEGER NOT NULL DEFAULT 0,
		watchers INTEGER NOT NULL DEFAULT 0,
		forks INTEGER NOT NULL DEFAULT 0,
		topics TEXT NOT NULL DEFAULT '[]',
		avatar_url TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		synced_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_repositories_username ON repositories(username COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS issues (
		id TEXT PRIMARY KEY,
		repository_id TEXT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		number INTEGER NOT NULL,
		title TEXT NOT NULL,
		body TEXT,
		state TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (repository_id, number)
	);

	CREATE INDEX IF NOT EXISTS idx_issues_repository_id ON issues(repository_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRepository saves a repository, replacing any row with the same ID
func (s *sqliteStorage) SaveRepository(ctx context.Context, repo *domain.Repository) error {
	topics, err := json.Marshal(storage.TopicsOrEmpty(repo.Topics))
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `
		INSERT INTO repositories (
			id, name, owner, full_name, url, description, is_private, username,
			homepage, language, stars, watchers, forks, topics, avatar_url,
			created_at, updated_at, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			owner = excluded.owner,
			full_name = excluded.full_name,
			url = excluded.url,
			description = excluded.description,
			is_private = excluded.is_private,
			username = excluded.username,
			homepage = excluded.homepage,
			language = excluded.language,
			stars = excluded.stars,
			watchers = excluded.watchers,
			forks = excluded.forks,
			topics = excluded.topics,
			avatar_url = excluded.avatar_url,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at
	`

	_, err = s.db.ExecContext(ctx, query,
		repo.ID, repo.Name, repo.Owner, repo.FullName, repo.URL, repo.Description,
		repo.IsPrivate, repo.Username, repo.Homepage, repo.Language,
		repo.Stars, repo.Watchers, repo.Forks, string(topics), repo.AvatarURL,
		repo.CreatedAt, repo.UpdatedAt, time.Now(),
	)
	return err
}

const repositoryColumns = `id, name, owner, full_name, url, description, is_private, username,
	homepage, language, stars, watchers, forks, topics, avatar_url, created_at, updated_at`

// GetRepository retrieves a repository by ID
func (s *sqliteStorage) GetRepository(ctx context.Context, id string) (*domain.Repository, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+repositoryColumns+` FROM repositories WHERE id = ?`, id)

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
func (s *sqliteStorage) GetRepositoriesByUser(ctx context.Context, username string) ([]*domain.Repository, error) {
	query := `SELECT ` + repositoryColumns + `
		FROM repositories
		WHERE username = ? COLLATE NOCASE
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
func (s *sqliteStorage) SaveIssue(ctx context.Context, issue *domain.Issue) (*domain.StoredIssue, error) {
	now := time.Now()
	query := `
		INSERT INTO issues (id, repository_id, number, title, body, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, number) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			state = excluded.state,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(), issue.RepositoryID, issue.Number, issue.Title, issue.Body, issue.State, now, now,
	)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, repository_id, number, title, body, state, created_at, updated_at
		FROM issues WHERE repository_id = ? AND number = ?
	`, issue.RepositoryID, issue.Number)
	return scanIssue(row)
}

// GetIssues retrieves the issues of a repository ordered by number descending
func (s *sqliteStorage) GetIssues(ctx context.Context, repositoryID string) ([]*domain.StoredIssue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repository_id, number, title, body, state, created_at, updated_at
		FROM issues
		WHERE repository_id = ?
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
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRepository(row scanner) (*domain.Repository, error) {
	var repo domain.Repository
	var description, homepage, language sql.NullString
	var topics string

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
	if err := json.Unmarshal([]byte(topics), &repo.Topics); err != nil {
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
