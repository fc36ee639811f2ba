package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("step failed: %w", NewNotOwnerError("bob", "alice"))

	assert.True(t, Is(err, ErrCodeNotOwner))
	assert.False(t, Is(err, ErrCodeNotFound))
	assert.False(t, Is(fmt.Errorf("plain"), ErrCodeNotOwner))
}

func TestNewIssueSaveFailedError(t *testing.T) {
	assert.Equal(t, "duplicate issue", NewIssueSaveFailedError(4, "duplicate issue", nil).Message)
	assert.Equal(t, "Failed to save issue #4", NewIssueSaveFailedError(4, "", nil).Message)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Forked repositories cannot be imported", UserMessage(NewForkNotAllowedError("alice/tool")))
	assert.Equal(t, "boom", UserMessage(fmt.Errorf("boom")))
}
