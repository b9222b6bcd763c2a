package generic

import (
	"strings"

	"github.com/google/uuid"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ShortCode returns n random uppercase base-36 characters (n <= 14), drawn
// from the random bytes of a v4 UUID.
func ShortCode(n int) string {
	id := uuid.New()
	// bytes 6 and 8 carry the version and variant bits
	random := append(append([]byte{}, id[:6]...), id[9:]...)
	random = append(random, id[7])
	if n > len(random) {
		n = len(random)
	}
	var b strings.Builder
	for _, c := range random[:n] {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String()
}

// ShortID returns prefix followed by the first n hex digits of a new UUID.
func ShortID(prefix string, n int) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
