package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	host, path, err := parseFTPURL("ftp://exports.example.com/leads/latest.csv")
	require.NoError(t, err)
	assert.Equal(t, "exports.example.com:21", host)
	assert.Equal(t, "/leads/latest.csv", path)
}

func TestParseFTPURL_ExplicitPort(t *testing.T) {
	host, _, err := parseFTPURL("ftp://exports.example.com:2121/leads.csv")
	require.NoError(t, err)
	assert.Equal(t, "exports.example.com:2121", host)
}

func TestParseFTPURL_WrongScheme(t *testing.T) {
	_, _, err := parseFTPURL("https://example.com/leads.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected ftp scheme")
}

func TestParseFTPURL_EmptyPath(t *testing.T) {
	_, _, err := parseFTPURL("ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty path")
}

func TestNewFTPFetcherDefaults(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, "anonymous", f.opts.User)
	assert.NotZero(t, f.opts.Timeout)

	f = NewFTPFetcher(FTPOptions{User: "exports", Password: "secret"})
	assert.Equal(t, "exports", f.opts.User)
	assert.Equal(t, "secret", f.opts.Password)
}
