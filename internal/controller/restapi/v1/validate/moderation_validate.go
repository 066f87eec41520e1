package validate

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

const (
	MaxKeyLength = 1024

	DefaultListLimit = 20
	MaxListLimit     = 100
)

var (
	ErrEmptyKey     = errors.New("key is required")
	ErrKeyTooLong   = fmt.Errorf("key cant be longer than %d bytes", MaxKeyLength)
	ErrKeyNotUTF8   = errors.New("key must be valid UTF-8")
	ErrInvalidLimit = fmt.Errorf("limit must be a number between 1 and %d", MaxListLimit)
)

func Key(key string) error {
	switch {
	case key == "":
		return ErrEmptyKey
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	case !utf8.ValidString(key):
		return ErrKeyNotUTF8
	}

	return nil
}

// Limit parses a list limit, an empty value yields DefaultListLimit.
func Limit(raw string) (int, error) {
	if raw == "" {
		return DefaultListLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxListLimit {
		return 0, ErrInvalidLimit
	}

	return limit, nil
}
