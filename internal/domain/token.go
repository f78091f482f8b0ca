package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const tokenPreviewLength = 50

// Submission is the payload delivered to the collection endpoint.
type Submission struct {
	Token         string `json:"token"`
	Version       string `json:"version"`
	Action        string `json:"action"`
	HarvestNumber uint   `json:"harvest_number"`
	SourceURL     string `json:"source_url"`
}

func (s Submission) Validate() error {
	if strings.TrimSpace(s.Token) == "" {
		return ErrTokenRequired
	}

	return nil
}

// TokenRecord is a token as stored by the collection endpoint.
type TokenRecord struct {
	ID            string    `json:"id"`
	Token         string    `json:"token"`
	Version       string    `json:"version"`
	Action        string    `json:"action,omitempty"`
	HarvestNumber uint      `json:"harvest_number,omitempty"`
	SourceURL     string    `json:"source_url,omitempty"`
	ReceivedAt    time.Time `json:"received_at"`
	Length        int       `json:"token_length"`
	Preview       string    `json:"token_preview"`
}

func NewTokenRecord(id string, submission Submission, receivedAt time.Time) TokenRecord {
	version := submission.Version
	if version == "" {
		version = "v3"
	}

	return TokenRecord{
		ID:            id,
		Token:         submission.Token,
		Version:       version,
		Action:        submission.Action,
		HarvestNumber: submission.HarvestNumber,
		SourceURL:     submission.SourceURL,
		ReceivedAt:    receivedAt,
		Length:        len(submission.Token),
		Preview:       TokenPreview(submission.Token),
	}
}

func TokenPreview(token string) string {
	if utf8.RuneCountInString(token) <= tokenPreviewLength {
		return token + "..."
	}

	runes := []rune(token)
	return string(runes[:tokenPreviewLength]) + "..."
}
