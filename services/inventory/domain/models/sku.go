package models

import (
	"fmt"
	"strings"
)

// SKU is a value object representing a valid stock keeping unit.
// Encapsulates validation rules: non-blank, at most 64 characters.
type SKU string

const maxSKULength = 64

// NewSKU constructs a valid SKU or returns an error if constraints are violated.
func NewSKU(s string) (SKU, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("sku must not be blank")
	}
	if len(s) > maxSKULength {
		return "", fmt.Errorf("sku must not exceed %d characters", maxSKULength)
	}
	return SKU(s), nil
}

// String returns the underlying string value.
func (s SKU) String() string {
	return string(s)
}
