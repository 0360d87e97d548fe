package utils

import (
	rndm "math/rand"
)

// --- Random String and ID Generators ---

// No underscore in the alphabet: generated ids end up inside
// underscore-delimited credential payloads.
var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateID creates a random alphanumeric identifier of length n.
func GenerateID(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}
