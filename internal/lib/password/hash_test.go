package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGetHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "regular password", password: "s3cret-pass"},
		{name: "unicode password", password: "пароль123"},
		{name: "too long for bcrypt", password: strings.Repeat("a", 73), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.NoError(t, CompareHash(hash, tt.password))
		})
	}
}

func TestCompareHash(t *testing.T) {
	correctHash, err := GetHash("correct_password")
	require.NoError(t, err)
	anotherHash, err := GetHash("another_password")
	require.NoError(t, err)

	tests := []struct {
		name        string
		hash        string
		password    string
		shouldMatch bool
	}{
		{name: "matching password", hash: correctHash, password: "correct_password", shouldMatch: true},
		{name: "wrong password", hash: correctHash, password: "wrong_password"},
		{name: "different hash same password", hash: anotherHash, password: "correct_password"},
		{name: "empty password", hash: correctHash, password: ""},
		{name: "garbage hash", hash: "not-a-hash", password: "correct_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompareHash(tt.hash, tt.password)
			if tt.shouldMatch {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestGetHash_Salted(t *testing.T) {
	hash1, err := GetHash("password")
	require.NoError(t, err)
	hash2, err := GetHash("password")
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2)
}
