package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) [][]string {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	return rows
}

func TestStreamCSV(t *testing.T) {
	input := "first_name,last_name,email\nJon,Smith,jon@acme.com\nJane,Doe,jane@beta.io\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"first_name", "last_name", "email"}, rows[0])
	assert.Equal(t, []string{"Jon", "Smith", "jon@acme.com"}, rows[1])
}

func TestStreamCSV_TrimSpaceAndDelimiter(t *testing.T) {
	input := "first_name; email\nJon ; jon@acme.com\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Delimiter: ';',
		TrimSpace: true,
	})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Jon", "jon@acme.com"}, rows[1])
}

func TestStreamCSV_Latin1(t *testing.T) {
	// "Müller" with a latin-1 encoded u-umlaut (0xFC).
	input := "last_name\nM\xfcller\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Latin1: true})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 2)
	assert.Equal(t, "Müller", rows[1][0])
}

func TestStreamCSV_VariableFieldCounts(t *testing.T) {
	input := "a,b,c\n1,2\n1,2,3,4\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 3)
	assert.Len(t, rows[1], 2)
	assert.Len(t, rows[2], 4)
}

func TestStreamCSV_MalformedQuote(t *testing.T) {
	input := "a,b\n\"unterminated,2\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	for range rowCh {
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read row")
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	for range rowCh {
	}
	assert.Error(t, <-errCh)
}
