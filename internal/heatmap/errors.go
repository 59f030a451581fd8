package heatmap

import (
	"errors"
	"fmt"
	"strings"
)

// MissingColumnError indicates a required header is absent from the input.
type MissingColumnError struct {
	Column string
	Header []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Header) == 0 {
		return fmt.Sprintf("missing column %q: input has no header", e.Column)
	}
	return fmt.Sprintf("missing column %q (found: %s)", e.Column, strings.Join(e.Header, ", "))
}

// MalformedError indicates the input is not valid tabular data or not decodable as text.
type MalformedError struct {
	Line int // 1-based; 0 when unknown
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed input at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed input: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// EmptyFileError indicates the input has a header but zero data rows.
type EmptyFileError struct{ Name string }

func (e *EmptyFileError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("no data rows in %s", e.Name)
	}
	return "no data rows"
}

// TooLargeError indicates the input has more distinct worksets x models than allowed.
type TooLargeError struct {
	Rows, Cols int
	Limit      int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("matrix of %d worksets x %d models exceeds the %d cell limit", e.Rows, e.Cols, e.Limit)
}

// Error kinds reported by Kind.
const (
	KindMissingColumn = "missing_column"
	KindMalformed     = "malformed"
	KindEmpty         = "empty"
	KindTooLarge      = "too_large"
)

// Kind classifies an input error for display. It returns "" for anything else.
func Kind(err error) string {
	var mc *MissingColumnError
	var me *MalformedError
	var ee *EmptyFileError
	var tl *TooLargeError
	switch {
	case errors.As(err, &mc):
		return KindMissingColumn
	case errors.As(err, &me):
		return KindMalformed
	case errors.As(err, &ee):
		return KindEmpty
	case errors.As(err, &tl):
		return KindTooLarge
	}
	return ""
}
