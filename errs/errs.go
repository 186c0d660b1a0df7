// SPDX-License-Identifier: EPL-2.0

// Package errs classifies failures by the scope at which they are isolated.
//
// Every failure in the sonification pipeline belongs to one Kind. The kind
// decides how far the failure travels: a layer, a cell, or a transect. No
// kind ever crosses the transect boundary.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the classification of an error for isolation purposes.
type Kind int

const (
	// Unknown is the zero Kind, used for unclassified errors.
	Unknown Kind = iota
	// MissingInput means a file or path is absent. Optional layers are
	// skipped, the elevation mosaic skips the whole transect.
	MissingInput
	// Alignment means a CRS transform or window computation failed. The
	// layer is treated as absent for that cell.
	Alignment
	// InvalidCell means a cell lacks the data needed for synthesis. A
	// silent segment is emitted.
	InvalidCell
	// IO means a read or write failed during assembly or normalization.
	// The transect falls back to a silent placeholder track.
	IO
	// Configuration means the configured grid cannot be resolved against
	// the raster. The transect is skipped.
	Configuration
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case MissingInput:
		return "missing_input"
	case Alignment:
		return "alignment"
	case InvalidCell:
		return "invalid_cell"
	case IO:
		return "io"
	case Configuration:
		return "configuration"
	default:
		return "unknown"
	}
}

// MarshalText lets Kind appear as a string in JSON reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the String form of a Kind.
func (k *Kind) UnmarshalText(b []byte) error {
	for c := Unknown; c <= Configuration; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", string(b))
}

// Error wraps an error with its Kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Site string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Site != "" {
		b.WriteString(e.Site)
		b.WriteString(": ")
	}
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error. A nil err still yields a non-nil *Error so
// callers can report a kind without a cause.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Ef builds a classified error from a format string.
func Ef(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WithSite annotates err with a site identifier. Unclassified errors are
// wrapped with the Unknown kind.
func WithSite(site string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.Site = site
		return &cp
	}
	return &Error{Kind: Unknown, Site: site, Err: err}
}

// KindOf returns the Kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
