package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const apiKeyAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateRandomKey returns a URL safe random key of the given length.
func GenerateRandomKey(length int) (string, error) {
	return gonanoid.Generate(apiKeyAlphabet, length)
}
