package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)

	token := EncodeCursor("doc-42", ts)
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "doc-42", cursor.LastID)
	assert.True(t, ts.Equal(cursor.Timestamp))
}

func TestEncodeCursor_EmptyIDYieldsEmptyToken(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestDecodeCursor_EmptyTokenIsFirstPage(t *testing.T) {
	cursor, err := DecodeCursor("")

	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursor_RejectsBadBase64(t *testing.T) {
	_, err := DecodeCursor("not base64 !!!")

	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestDecodeCursor_RejectsMalformedPayload(t *testing.T) {
	cases := []string{
		"no-separator",
		"|2025-06-01T12:00:00Z",
		"doc-1|not-a-timestamp",
	}

	for _, raw := range cases {
		token := base64.StdEncoding.EncodeToString([]byte(raw))
		_, err := DecodeCursor(token)
		assert.ErrorIs(t, err, ErrInvalidCursor, "payload %q", raw)
	}
}

func TestEncodeCursor_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2025, 6, 1, 14, 0, 0, 0, loc)

	cursor, err := DecodeCursor(EncodeCursor("doc-1", ts))

	require.NoError(t, err)
	assert.Equal(t, time.UTC, cursor.Timestamp.Location())
	assert.True(t, ts.Equal(cursor.Timestamp))
}
