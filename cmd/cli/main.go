package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-issue-importer/internal/collector"
	"github.com/kurihiro0119/github-issue-importer/internal/config"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
	"github.com/kurihiro0119/github-issue-importer/internal/logging"
	"github.com/kurihiro0119/github-issue-importer/internal/workflow"
	"github.com/kurihiro0119/github-issue-importer/pkg/client"
)

var (
	username   string
	outputJSON bool
	timeout    time.Duration
	assumeYes  bool
	issueList  string
	allIssues  bool
)

var rootCmd = &cobra.Command{
	Use:   "repo-importer",
	Short: "Import your GitHub repositories and their issues",
	Long: `A CLI tool for importing GitHub repositories you own, together with
their open issues, into the importer backend.

The signed-in user is taken from --username or GITHUB_USERNAME.`,
	SilenceUsage: true,
}

var importCmd = &cobra.Command{
	Use:   "import [link]",
	Short: "Import a repository and selected issues",
	Long: `Fetch https://github.com/<owner>/<repo>, save it to the backend and
import the open issues you choose.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var reposCmd = &cobra.Command{
	Use:   "repos [user]",
	Short: "List imported repositories",
	Long:  `Display the repositories a user has imported.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepos,
}

var issuesCmd = &cobra.Command{
	Use:   "issues [repository-id]",
	Short: "List imported issues",
	Long:  `Display the issues imported into a repository.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runIssues,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "signed-in GitHub login (default is GITHUB_USERNAME)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "overall deadline for the command (0 means none)")

	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "save without asking for confirmation")
	importCmd.Flags().StringVar(&issueList, "issues", "", "comma separated issue numbers to import")
	importCmd.Flags().BoolVar(&allIssues, "all-issues", false, "import every open issue")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(issuesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperrors.UserMessage(err))
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if username == "" {
		username = cfg.Username
	}
	return cfg, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if allIssues && issueList != "" {
		return fmt.Errorf("--issues and --all-issues cannot be combined")
	}
	selected, err := parseIssueNumbers(issueList)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	coll, err := collector.NewGitHubCollector(cfg.GitHubToken, cfg.GitHubAPIURL, logger)
	if err != nil {
		return fmt.Errorf("failed to create collector: %w", err)
	}

	wf := workflow.New(coll, client.NewClient(cfg.APIEndpoint), username, logger)
	defer wf.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	imp := &importer{
		wf:       wf,
		out:      cmd.OutOrStdout(),
		prompter: newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		yes:      assumeYes,
		all:      allIssues,
		selected: selected,
		json:     outputJSON,
	}
	return imp.run(ctx, args[0])
}

func runRepos(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	user := username
	if len(args) == 1 {
		user = args[0]
	}
	if user == "" {
		return apperrors.NewNotAuthenticatedError()
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	repos, err := client.NewClient(cfg.APIEndpoint).ListRepositories(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), repos)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nRepositories imported by %s\n\n", user)
	renderRepositoryList(cmd.OutOrStdout(), repos)
	return nil
}

func runIssues(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	issues, err := client.NewClient(cfg.APIEndpoint).ListIssues(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), issues)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nIssues imported into repository %s\n\n", args[0])
	renderStoredIssues(cmd.OutOrStdout(), issues)
	return nil
}
