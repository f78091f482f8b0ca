package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionValidate(t *testing.T) {
	assert.NoError(t, Submission{Token: "T1"}.Validate())
	assert.ErrorIs(t, Submission{Token: " \t"}.Validate(), ErrTokenRequired)
}

func TestNewTokenRecordDefaultsVersion(t *testing.T) {
	receivedAt := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	record := NewTokenRecord("id-1", Submission{Token: "T1", Action: "checkbox_challenge", HarvestNumber: 3}, receivedAt)

	assert.Equal(t, "id-1", record.ID)
	assert.Equal(t, "v3", record.Version)
	assert.Equal(t, "checkbox_challenge", record.Action)
	assert.Equal(t, uint(3), record.HarvestNumber)
	assert.Equal(t, receivedAt, record.ReceivedAt)
	assert.Equal(t, 2, record.Length)
	assert.Equal(t, "T1...", record.Preview)

	assert.Equal(t, "v2", NewTokenRecord("id-2", Submission{Token: "T", Version: "v2"}, receivedAt).Version)
}

func TestTokenPreviewTruncates(t *testing.T) {
	token := strings.Repeat("a", 50) + strings.Repeat("b", 10)

	assert.Equal(t, strings.Repeat("a", 50)+"...", TokenPreview(token))
	assert.Equal(t, "ééé...", TokenPreview("ééé"))
}
