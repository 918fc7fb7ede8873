package sheetauth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fastArgon2id keeps the cost low enough for tests
var fastArgon2id = Argon2idHasher{
	Params: Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1, KeyLen: 32, SaltLen: 16},
}

func TestArgon2idHashAndVerify(t *testing.T) {
	stored, err := fastArgon2id.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stored, "$argon2id$v=19$"))

	ok, err := fastArgon2id.Verify(stored, "correct horse battery staple")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = fastArgon2id.Verify(stored, "wrong")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArgon2idHashesAreSalted(t *testing.T) {
	first, err := fastArgon2id.Hash("secret")
	require.NoError(t, err)
	second, err := fastArgon2id.Hash("secret")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestArgon2idVerifyRejectsForeignFormats(t *testing.T) {
	for _, stored := range []string{
		"",
		"plaintext",
		"$2y$10$bcrypthash",              // bcrypt
		"$argon2i$v=19$m=8,t=1,p=1$a$b",  // wrong variant
		"$argon2id$v=18$m=8,t=1,p=1$a$b", // wrong version
		"$argon2id$v=19$m=8,t=1,p=1$!!$b",
	} {
		_, err := fastArgon2id.Verify(stored, "secret")
		require.Error(t, err, "stored value %q must not verify", stored)
	}
}

func TestArgon2idVerifyAcrossParams(t *testing.T) {
	// parameters are read from the stored hash, not from the verifying hasher
	stored, err := fastArgon2id.Hash("secret")
	require.NoError(t, err)

	ok, err := Argon2idHasher{}.Verify(stored, "secret")
	require.NoError(t, err)
	require.True(t, ok)
}
