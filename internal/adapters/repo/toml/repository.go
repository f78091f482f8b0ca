package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	tokensPathKey   = "server.tokens_path"
	tokensFileMode  = 0o600
	tokensDirMode   = 0o700
	harvestDir      = ".harvest"
	tokensFileName  = "tokens.toml"
	tempFilePattern = ".tokens-*.toml.tmp"
)

// TokenRepository keeps the collection endpoint's rolling window of tokens in a TOML file.
type TokenRepository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.TokenRepository = (*TokenRepository)(nil)

func NewTokenRepository(cfg *viper.Viper) (*TokenRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(tokensPathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, harvestDir, tokensFileName)
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &TokenRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *TokenRepository) Path() string {
	return r.path
}

func (r *TokenRepository) List(ctx context.Context) ([]domain.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	records := make([]domain.TokenRecord, 0, len(file.Tokens))
	for _, entry := range file.Tokens {
		records = append(records, fromSchema(entry))
	}

	return records, nil
}

// Append adds record as the newest entry and drops the oldest entries beyond keep.
// A non-positive keep disables trimming.
func (r *TokenRepository) Append(ctx context.Context, record domain.TokenRecord, keep int) ([]domain.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	file.Tokens = append(file.Tokens, toSchema(record))
	if keep > 0 && len(file.Tokens) > keep {
		file.Tokens = append([]tokenSchema(nil), file.Tokens[len(file.Tokens)-keep:]...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.writeSchema(file); err != nil {
		return nil, err
	}

	records := make([]domain.TokenRecord, 0, len(file.Tokens))
	for _, entry := range file.Tokens {
		records = append(records, fromSchema(entry))
	}

	return records, nil
}

func (r *TokenRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeSchema(fileSchema{})
}

func (r *TokenRepository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read tokens file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode tokens file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve tokens path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *TokenRepository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), tokensDirMode); err != nil {
		return fmt.Errorf("create tokens directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode tokens file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp tokens file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp tokens file: %w", err)
	}

	if err := tempFile.Chmod(tokensFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp tokens file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp tokens file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace tokens file: %w", err)
	}

	cleanup = false

	return nil
}

func toSchema(record domain.TokenRecord) tokenSchema {
	return tokenSchema{
		ID:            record.ID,
		Token:         record.Token,
		Version:       record.Version,
		Action:        record.Action,
		HarvestNumber: record.HarvestNumber,
		SourceURL:     record.SourceURL,
		ReceivedAt:    formatTime(record.ReceivedAt),
		Length:        record.Length,
		Preview:       record.Preview,
	}
}

func fromSchema(entry tokenSchema) domain.TokenRecord {
	return domain.TokenRecord{
		ID:            entry.ID,
		Token:         entry.Token,
		Version:       entry.Version,
		Action:        entry.Action,
		HarvestNumber: entry.HarvestNumber,
		SourceURL:     entry.SourceURL,
		ReceivedAt:    parseTime(entry.ReceivedAt),
		Length:        entry.Length,
		Preview:       entry.Preview,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
