package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func TestHash_FreshSaltEachCall(t *testing.T) {
	h := newTestHasher()

	a, err := h.Hash("pw1")
	require.NoError(t, err)
	b, err := h.Hash("pw1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("pw1", a))
	assert.True(t, h.Verify("pw1", b))
}

func TestHash_Empty(t *testing.T) {
	_, err := newTestHasher().Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHash_UsesConfiguredCost(t *testing.T) {
	h := NewBcryptHasher(5)

	hashed, err := h.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcryptHasher(99).cost)
}

func TestIsHashed(t *testing.T) {
	h := newTestHasher()
	hashed, err := h.Hash("pw")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"generated hash", hashed, true},
		{"2a prefix", "$2a$10$abcdefghijklmnopqrstuv", true},
		{"2b prefix", "$2b$10$abcdefghijklmnopqrstuv", true},
		{"2y prefix", "$2y$10$abcdefghijklmnopqrstuv", true},
		{"plaintext", "password123", false},
		{"argon2", "$argon2id$v=19$m=65536,t=1,p=4$x$y", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.IsHashed(tt.value))
		})
	}
}

func TestVerify(t *testing.T) {
	h := newTestHasher()
	hashed, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.True(t, h.Verify("correct horse", hashed))
	assert.False(t, h.Verify("wrong horse", hashed))
	assert.False(t, h.Verify("correct horse", "$2a$10$short"))
	assert.False(t, h.Verify("correct horse", "correct horse"))
	assert.False(t, h.Verify("", ""))
}

func TestVerify_TruncatedHash(t *testing.T) {
	h := newTestHasher()
	hashed, err := h.Hash("pw")
	require.NoError(t, err)

	assert.False(t, h.Verify("pw", strings.TrimSuffix(hashed, hashed[len(hashed)-5:])))
}

func TestHash_RejectsOverMaxLength(t *testing.T) {
	h := newTestHasher()

	_, err := h.Hash(strings.Repeat("p", MaxLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hashed, err := h.Hash(strings.Repeat("p", MaxLength))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("p", MaxLength), hashed))
}

func TestHashLong(t *testing.T) {
	h := newTestHasher()
	long := strings.Repeat("p", 100)

	hashed, err := h.HashLong(long)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hashed, prehashedPrefix))
	assert.True(t, h.IsHashed(hashed))
	assert.True(t, h.Verify(long, hashed))
	// Bytes past 72 still count.
	assert.False(t, h.Verify(strings.Repeat("p", 99)+"q", hashed))
	assert.False(t, h.Verify(long, strings.TrimPrefix(hashed, prehashedPrefix)))

	_, err = h.HashLong("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}
