package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MaxAccountCodeLength = 50
	MaxAccountNameLength = 200
	MaxDescriptionLength = 1000
	MaxReferenceLength   = 100
	MaxMetadataSize      = 10240 // 10KB
)

// ValidateAccountCode validates an account code.
func ValidateAccountCode(code string) error {
	code = strings.TrimSpace(code)

	if code == "" {
		return fmt.Errorf("account code cannot be empty")
	}

	if len(code) > MaxAccountCodeLength {
		return fmt.Errorf("account code exceeds %d characters", MaxAccountCodeLength)
	}

	return nil
}

// ValidateAccountName validates an account name.
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("account name cannot be empty")
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("account name exceeds %d characters", MaxAccountNameLength)
	}

	return nil
}

// ValidateCurrency validates a currency code against the registry and
// returns its canonical form.
func ValidateCurrency(currency string) (string, error) {
	c, ok := LookupCurrency(currency)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}

	return c.Code, nil
}

// ValidateMetadata validates metadata size.
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: %d bytes over %d limit", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidatePagination clamps pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
