package passcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("0303456")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	assert.True(t, Verify(encoded, "0303456"))
	assert.False(t, Verify(tamper(encoded), "0303456"), "tampered hash must not verify")
	assert.False(t, Verify(encoded, "0303457"))
	assert.False(t, Verify(encoded, ""))
}

// tamper replaces the first character of the encoded key with a different one.
func tamper(encoded string) string {
	i := strings.LastIndex(encoded, "$") + 1
	replacement := byte('Q')
	if encoded[i] == 'Q' {
		replacement = 'A'
	}
	return encoded[:i] + string(replacement) + encoded[i+1:]
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("same")
	require.NoError(t, err)
	b, err := Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "two hashes of the same passcode must differ by salt")
	assert.True(t, Verify(a, "same"))
	assert.True(t, Verify(b, "same"))
}

func TestVerifyMalformed(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$notbase64!$alsonot!",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=banana$c2FsdA$a2V5",
	}
	for _, c := range cases {
		assert.False(t, Verify(c, "anything"), "hash %q must not verify", c)
	}
}
