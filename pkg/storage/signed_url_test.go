package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("report-1", "csv", "attendance_20240301_090000_report-1.csv")
	require.NoError(t, err)
	assert.NotContains(t, token, "/")
	assert.False(t, expiresAt.IsZero())

	claims, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "report-1", claims.ReportID)
	assert.Equal(t, "csv", claims.Format)
	assert.Equal(t, "attendance_20240301_090000_report-1.csv", claims.Path)
	assert.WithinDuration(t, expiresAt, claims.Expiry(), time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("report-1", "pdf", "reports/file.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = signer.Parse(token, false)
	require.Error(t, err)

	claims, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "report-1", claims.ReportID)
	assert.Equal(t, "reports/file.pdf", claims.Path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("report-1", "csv", "file.csv")
	require.NoError(t, err)

	other, _, err := signer.Generate("report-2", "csv", "other.csv")
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	parts[1] = strings.Split(other, ".")[1]
	_, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)

	_, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	require.Error(t, err)

	_, err = signer.Parse("not-a-token", true)
	require.Error(t, err)
}

func TestSignedURLSignerGenerateValidation(t *testing.T) {
	_, _, err := NewSignedURLSigner("secret", time.Hour).Generate("", "csv", "file.csv")
	require.Error(t, err)
	_, _, err = NewSignedURLSigner("secret", time.Hour).Generate("report-1", "", "file.csv")
	require.Error(t, err)
	_, _, err = NewSignedURLSigner("", time.Hour).Generate("report-1", "csv", "file.csv")
	require.Error(t, err)
}
