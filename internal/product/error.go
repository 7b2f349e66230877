package product

import "errors"

var (
	ErrNotFound        = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrSlugTaken       = errors.New("product slug already in use")
)
