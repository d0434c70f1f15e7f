package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	Version, GitCommit = "1.2.3", "abc123"
	t.Cleanup(func() { Version, GitCommit = oldVersion, oldCommit })

	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "Event management server")
	assert.Contains(t, out, "Version:    1.2.3")
	assert.Contains(t, out, "Git commit: abc123")
	assert.Contains(t, out, runtime.Version())
}
