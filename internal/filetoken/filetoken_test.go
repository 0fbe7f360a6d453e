package filetoken

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	publicID = "uploads/file_1700000000000_abcdef012345.jpg"
	fileID   = "abcdef012345"
)

func TestIssueParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	tok, err := iss.Issue(publicID, fileID)
	require.NoError(t, err)

	claims, err := iss.Parse(tok, fileID)
	require.NoError(t, err)
	assert.Equal(t, publicID, claims.PublicID())
	assert.Equal(t, fileID, claims.FileID)
}

func TestParse_Rejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(publicID, fileID)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{FileID: fileID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		parser *Issuer
		token  string
		fileID string
	}{
		{"wrong file id", iss, tok, "000000000000"},
		{"wrong secret", NewIssuer("other", time.Hour), tok, fileID},
		{"garbage", iss, "not-a-token", fileID},
		{"empty", iss, "", fileID},
		{"alg none", iss, none, fileID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.parser.Parse(tc.token, tc.fileID)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}

func TestParse_Expired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	start := time.Now()
	iss.now = func() time.Time { return start }

	tok, err := iss.Issue(publicID, fileID)
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = iss.Parse(tok, fileID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
