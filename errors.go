// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package seedani

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error the way the engine's error-handling design
// distinguishes them: some are localised and recoverable by the caller,
// some are fatal.
type Kind int

const (
	// KindInput covers a malformed sequence file or a missing path.
	KindInput Kind = iota
	// KindSketchMismatch covers query/reference sketches built with
	// incompatible parameters.
	KindSketchMismatch
	// KindInvariant covers a violated data-model invariant, e.g. k
	// longer than the marker k-mer, marker_c < c, or fine_seeds missing
	// at chain time. Always fatal.
	KindInvariant
	// KindModelLoad covers a missing or unparseable learned-ANI
	// artefact. Fatal only when the caller explicitly requested
	// learned-ANI correction.
	KindModelLoad
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "Input"
	case KindSketchMismatch:
		return "SketchMismatch"
	case KindInvariant:
		return "Invariant"
	case KindModelLoad:
		return "ModelLoad"
	default:
		return "Unknown"
	}
}

// Error is the engine's typed error. Fatal reports whether the caller
// must abort rather than skip the offending input/pair.
type Error struct {
	Kind  Kind
	Fatal bool
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, fatal bool, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Fatal: fatal, cause: errors.Errorf(format, args...)}
}

// ErrInput wraps a localised input-handling failure.
func ErrInput(format string, args ...interface{}) *Error {
	return newError(KindInput, false, format, args...)
}

// ErrSketchMismatch wraps a parameter mismatch between two sketches.
// mergeSketchParams passes fatal=true only when the two alphabets
// differ; whether either side was loaded from a persisted sketch is not
// considered, so differing c/k/marker_c is always non-fatal.
func ErrSketchMismatch(fatal bool, format string, args ...interface{}) *Error {
	return newError(KindSketchMismatch, fatal, format, args...)
}

// ErrInvalidSketch is the fatal invariant error returned when chaining
// is requested on a marker-only sketch.
var ErrInvalidSketch = newError(KindInvariant, true, "fine_seeds missing at chain time")

// ErrInvariantf builds a fatal invariant error with a custom message.
func ErrInvariantf(format string, args ...interface{}) *Error {
	return newError(KindInvariant, true, format, args...)
}

// ErrModelLoad wraps a model-loading failure. fatal is true only when
// the caller explicitly opted into learned-ANI correction.
func ErrModelLoad(fatal bool, format string, args ...interface{}) *Error {
	return newError(KindModelLoad, fatal, format, args...)
}

// IsFatal reports whether err, if it is one of this package's typed
// errors, must abort the whole run rather than be logged and skipped.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal
	}
	return false
}
