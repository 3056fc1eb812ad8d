package extract

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrStructure      = errors.New("extract: page structure mismatch")
	ErrMissingAddress = errors.New("extract: address continuation before any address")
	ErrScoreParse     = errors.New("extract: invalid inspection score")
)

// StructureError reports a required element that is missing from the page.
// It means the page layout no longer matches what the extractor expects.
type StructureError struct {
	Element string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("extract: required element %q not found", e.Element)
}

func (e *StructureError) Is(target error) bool { return target == ErrStructure }

// MissingAddressError reports a keyless metadata row seen before any
// "Address" row it could continue.
type MissingAddressError struct {
	Value string
}

func (e *MissingAddressError) Error() string {
	return fmt.Sprintf("extract: address continuation %q has no preceding address", e.Value)
}

func (e *MissingAddressError) Is(target error) bool { return target == ErrMissingAddress }

// ScoreParseError reports an inspection row whose score cell is absent or
// not an integer.
type ScoreParseError struct {
	Row  int
	Text string
	Err  error
}

func (e *ScoreParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extract: inspection row %d: score cell has no text", e.Row)
	}
	return fmt.Sprintf("extract: inspection row %d: score %q: %v", e.Row, e.Text, e.Err)
}

func (e *ScoreParseError) Unwrap() error { return e.Err }

func (e *ScoreParseError) Is(target error) bool { return target == ErrScoreParse }

// ListingError ties a failure to the position of the listing that caused it.
type ListingError struct {
	Index int
	Err   error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing %d: %v", e.Index, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }
