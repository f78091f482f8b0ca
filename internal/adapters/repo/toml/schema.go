package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	Tokens  []tokenSchema `toml:"tokens"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported tokens schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type tokenSchema struct {
	ID            string `toml:"id"`
	Token         string `toml:"token"`
	Version       string `toml:"version"`
	Action        string `toml:"action,omitempty"`
	HarvestNumber uint   `toml:"harvest_number,omitempty"`
	SourceURL     string `toml:"source_url,omitempty"`
	ReceivedAt    string `toml:"received_at"`
	Length        int    `toml:"token_length"`
	Preview       string `toml:"token_preview"`
}
