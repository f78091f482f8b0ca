package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, path string) *TokenRepository {
	t.Helper()

	config := viper.New()
	config.Set("server.tokens_path", path)

	repo, err := NewTokenRepository(config)
	require.NoError(t, err)
	return repo
}

func record(id string, receivedAt time.Time) domain.TokenRecord {
	return domain.NewTokenRecord(id, domain.Submission{
		Token:         "token-" + id,
		Version:       "v2",
		Action:        "invisible_auto",
		HarvestNumber: 1,
		SourceURL:     "https://example.test/page",
	}, receivedAt)
}

func TestTokenRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "tokens.toml"))
	receivedAt := time.Date(2026, 2, 14, 11, 0, 0, 123, time.UTC)

	first := record("a", receivedAt)
	second := record("b", receivedAt.Add(time.Second))

	_, err := repo.Append(context.Background(), first, 10)
	require.NoError(t, err)
	records, err := repo.Append(context.Background(), second, 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenRecord{first, second}, records)

	listed, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenRecord{first, second}, listed)
}

func TestTokenRepositoryAppendKeepsNewest(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "tokens.toml"))
	receivedAt := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	var records []domain.TokenRecord
	for i := 0; i < 5; i++ {
		var err error
		records, err = repo.Append(context.Background(), record(strconv.Itoa(i), receivedAt.Add(time.Duration(i)*time.Second)), 3)
		require.NoError(t, err)
	}

	require.Len(t, records, 3)
	assert.Equal(t, "2", records[0].ID)
	assert.Equal(t, "4", records[2].ID)
}

func TestTokenRepositoryClear(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "tokens.toml"))
	_, err := repo.Append(context.Background(), record("a", time.Now()), 10)
	require.NoError(t, err)

	require.NoError(t, repo.Clear(context.Background()))

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTokenRepositoryCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewTokenRepository(viper.New())
	require.NoError(t, err)

	_, err = repo.Append(context.Background(), record("a", time.Now()), 10)
	require.NoError(t, err)

	tokensPath := filepath.Join(homeDir, ".harvest", "tokens.toml")
	assert.Equal(t, tokensPath, repo.Path())
	info, err := os.Stat(tokensPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTokenRepositoryMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "tokens.toml"))

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTokenRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	tokensPath := filepath.Join(t.TempDir(), "tokens.toml")
	require.NoError(t, os.WriteFile(tokensPath, []byte("tokens = ["), 0o600))

	_, err := newTestRepository(t, tokensPath).List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode tokens file")
}

func TestTokenRepositoryCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "tokens.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Append(ctx, record("a", time.Now()), 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTokenRepositoryConcurrentAppendsAcrossInstances(t *testing.T) {
	t.Parallel()

	tokensPath := filepath.Join(t.TempDir(), "tokens.toml")
	repoA := newTestRepository(t, tokensPath)
	repoB := newTestRepository(t, tokensPath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	write := func(repo *TokenRepository, prefix string) {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			_, err := repo.Append(context.Background(), record(prefix+strconv.Itoa(i), time.Now()), 0)
			errCh <- err
		}
	}
	go write(repoA, "a-")
	go write(repoB, "b-")

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	records, err := repoA.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, perRepoWrites*2)
}

func TestTokenRepositorySerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	tokensPath := filepath.Join(t.TempDir(), "tokens.toml")
	_, err := newTestRepository(t, tokensPath).Append(context.Background(), record("a", time.Now()), 10)
	require.NoError(t, err)

	data, err := os.ReadFile(tokensPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "token_preview")
	assert.Contains(t, string(data), "token-a...")
}

func TestTokenRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	tokensPath := filepath.Join(t.TempDir(), "tokens.toml")
	require.NoError(t, os.WriteFile(tokensPath, []byte(strings.Join([]string{
		"version = 999",
		"",
		"tokens = []",
		"",
	}, "\n")), 0o600))

	_, err := newTestRepository(t, tokensPath).List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported tokens schema version")
}
