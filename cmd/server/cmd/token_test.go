package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenTestUserID = "01HZX3M8Q1V6YJ4K2N5P7R9T0W"

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/events")
	t.Setenv("JWT_SECRET", "token-test-secret")
	t.Setenv("JWT_ISSUER", "event-management")

	out, stderr, err := executeCommand(t, "token", "--user-id", strings.ToLower(tokenTestUserID))
	require.NoError(t, err)
	assert.Contains(t, stderr, "expires at")

	issuer := auth.NewTokenIssuer("token-test-secret", time.Hour, "event-management")
	userID, err := issuer.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, tokenTestUserID, userID)
}

func TestTokenCommandRejectsBadUserID(t *testing.T) {
	_, _, err := executeCommand(t, "token", "--user-id", "not-a-ulid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user-id")
}

func TestTokenCommandRequiresUserID(t *testing.T) {
	_, _, err := executeCommand(t, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user-id")
}
