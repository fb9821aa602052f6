package util

// maskedDomain replaces the real domain of masked addresses.
const maskedDomain = "masked.local"

// MaskEmail derives a stable stand-in address for privacy mode. The same
// input always yields the same output.
func MaskEmail(email string) string {
	if email == "" {
		return email
	}
	var hash int32
	for _, r := range email {
		hash = (hash << 5) - hash + int32(r)
	}
	seed := int64(hash)
	if seed < 0 {
		seed = -seed
	}

	const letters = "abcdefghijklmnopqrstuvwxyz"
	buf := make([]byte, 12)
	for i := range buf {
		buf[i] = letters[seed%int64(len(letters))]
		seed = seed/int64(len(letters)) + int64(i)
	}
	return string(buf) + "@" + maskedDomain
}

// MaskSecret returns a masked version of a token for display. Empty input
// stays empty.
func MaskSecret(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
