package kvutil

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// EncodeToken escapes s into a single KV key token.
//
// ASCII letters, digits, '-' and '_' pass through; every other byte becomes
// "=XX". The result never contains '.', so it is safe between separators.
func EncodeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isPlain(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('=')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}

	return b.String()
}

// DecodeToken reverses EncodeToken.
func DecodeToken(s string) (string, error) {
	if !strings.Contains(s, "=") {
		return s, nil
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			out = append(out, s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated escape in %q", s)
		}
		hi, lo := unhex(s[i+1]), unhex(s[i+2])
		if hi < 0 || lo < 0 {
			return "", fmt.Errorf("bad escape in %q", s)
		}
		out = append(out, byte(hi<<4|lo))
		i += 2
	}

	return string(out), nil
}

// JoinKey encodes each token and joins them with '.'.
func JoinKey(tokens ...string) string {
	enc := make([]string, len(tokens))
	for i, t := range tokens {
		enc[i] = EncodeToken(t)
	}

	return strings.Join(enc, ".")
}

// SplitKey splits a key built by JoinKey and decodes every token.
func SplitKey(key string) ([]string, error) {
	parts := strings.Split(key, ".")
	for i, p := range parts {
		dec, err := DecodeToken(p)
		if err != nil {
			return nil, err
		}
		parts[i] = dec
	}

	return parts, nil
}

func isPlain(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}
