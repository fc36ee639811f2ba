package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
)

func TestNormalize_Accepts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		owner string
		repo  string
	}{
		{"plain", "https://github.com/alice/tool", "alice", "tool"},
		{"trailing slash", "https://github.com/alice/tool/", "alice", "tool"},
		{"git suffix", "https://github.com/alice/tool.git", "alice", "tool"},
		{"git suffix and slash", "https://github.com/alice/tool.git/", "alice", "tool"},
		{"surrounding whitespace", "  https://github.com/Alice/Tool \n", "Alice", "Tool"},
		{"dots in name", "https://github.com/alice/my.tool", "alice", "my.tool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.owner, got.Owner)
			assert.Equal(t, tt.repo, got.Name)
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	inputs := []string{
		"",
		"alice/tool",
		"http://github.com/alice/tool",
		"https://gitlab.com/alice/tool",
		"https://github.com/alice",
		"https://github.com/alice/",
		"https://github.com//tool",
		"https://github.com/alice/tool/issues",
		"https://github.com/alice/tool?tab=readme",
		"https://github.com/alice/tool#readme",
		"https://github.com/alice/tool//",
		"https://github.com/alice/tool.git.git",
		"git@github.com:alice/tool.git",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Normalize(in)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidLinkFormat))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://github.com/alice/tool/",
		"https://github.com/alice/tool.git",
		" https://github.com/Alice/Tool.git/ ",
		"https://github.com/alice/tool.git.git",
		"https://github.com/alice/tool/extra",
		"not a link",
	}

	for _, in := range inputs {
		first, err1 := Normalize(in)
		if err1 != nil {
			// a rejected input stays rejected when fed back verbatim
			_, err2 := Normalize(in)
			assert.Error(t, err2, in)
			continue
		}
		second, err2 := Normalize(URL(*first))
		require.NoError(t, err2, in)
		assert.Equal(t, first, second, in)
	}
}

func TestVerifyOwner(t *testing.T) {
	assert.NoError(t, VerifyOwner("alice", "alice"))
	assert.NoError(t, VerifyOwner("Alice", "alice"))

	err := VerifyOwner("bob", "alice")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotOwner))

	err = VerifyOwner("alice", "")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotAuthenticated))
}
