package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/semrel/internal/model"
)

// fakeEnv returns an os.LookupEnv replacement backed by a map.
func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func fixedSignature(name, email string) SignatureProvider {
	return func(context.Context) (model.Signature, error) {
		return model.Signature{Name: name, Email: email}, nil
	}
}

func TestResolveSignature_FirstCompleteWins(t *testing.T) {
	sig, err := ResolveSignature(context.Background(),
		fixedSignature("", ""),
		fixedSignature("Only Name", ""),
		fixedSignature("Second", "second@example.com"),
		fixedSignature("Third", "third@example.com"),
	)

	require.NoError(t, err)
	assert.Equal(t, model.Signature{Name: "Second", Email: "second@example.com"}, sig)
}

func TestResolveSignature_NoneFound(t *testing.T) {
	_, err := ResolveSignature(context.Background(), fixedSignature("", ""))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSignature)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitSignatureError, cliErr.Code)
}

func TestResolveSignature_ProviderErrorStops(t *testing.T) {
	boom := errors.New("config is corrupt")
	called := false

	_, err := ResolveSignature(context.Background(),
		func(context.Context) (model.Signature, error) { return model.Signature{}, boom },
		func(context.Context) (model.Signature, error) {
			called = true
			return model.Signature{Name: "x", Email: "y"}, nil
		},
	)

	assert.ErrorIs(t, err, boom)
	assert.False(t, called, "providers after a failing one must not run")
}

func TestEnvSignature(t *testing.T) {
	provider := EnvSignature(fakeEnv(map[string]string{
		"GIT_COMMITTER_NAME":  " CI Bot ",
		"GIT_COMMITTER_EMAIL": "ci@example.com",
	}))

	sig, err := provider(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Signature{Name: "CI Bot", Email: "ci@example.com"}, sig)

	empty, err := EnvSignature(fakeEnv(nil))(context.Background())
	require.NoError(t, err)
	assert.False(t, empty.IsComplete())
}

// TestGitConfigSignature_Local reads the identity configured by
// setupTestRepo from the repository-local config.
func TestGitConfigSignature_Local(t *testing.T) {
	r := openTestRepo(t, setupTestRepo(t))

	sig, err := r.GitConfigSignature("--local")(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Signature{Name: "Test User", Email: "test@example.com"}, sig)
}

func TestGitConfigSignature_MissingKey(t *testing.T) {
	dir := setupTestRepo(t)
	runTestGit(t, dir, "config", "--unset", "user.email")
	r := openTestRepo(t, dir)

	sig, err := r.GitConfigSignature("--local")(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test User", sig.Name)
	assert.Empty(t, sig.Email)
}

// TestDefaultSignatureProviders_EnvFirst confirms the environment wins over
// repository config when both are set.
func TestDefaultSignatureProviders_EnvFirst(t *testing.T) {
	t.Setenv("GIT_COMMITTER_NAME", "Env Bot")
	t.Setenv("GIT_COMMITTER_EMAIL", "env@example.com")
	r := openTestRepo(t, setupTestRepo(t))

	sig, err := ResolveSignature(context.Background(), r.DefaultSignatureProviders()...)
	require.NoError(t, err)
	assert.Equal(t, "Env Bot", sig.Name)
}
