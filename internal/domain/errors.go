package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate reports a uniqueness violation in the store.
	ErrDuplicate = errors.New("duplicate key")

	// ErrPostIDTaken is the duplicate case for a colliding random post id.
	ErrPostIDTaken = fmt.Errorf("%w: post id", ErrDuplicate)

	// ErrTransformation reports that the generative call failed or returned unusable content.
	ErrTransformation = errors.New("transformation failed")

	// ErrStoreUnavailable aborts the current tick; the next scheduled run retries.
	ErrStoreUnavailable = errors.New("store unavailable")
)
