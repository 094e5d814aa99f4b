package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrConfiguration is returned when a run cannot start: an order the
// corpus is too short for, an empty seed set, a vocabulary smaller than one.
var ErrConfiguration = errors.New("configuration error")

// ErrUnseenGram matches any UnseenGramError.
var ErrUnseenGram = errors.New("unseen n-gram")

func ConfigurationError(format string, args ...any) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

type UnseenGramError struct {
	Gram []Symbol
}

func (e *UnseenGramError) Error() string {
	return fmt.Sprintf("unseen n-gram (%s)", strings.Join(e.Gram, ", "))
}

func (e *UnseenGramError) Is(target error) bool {
	return target == ErrUnseenGram
}

// IOError wraps failures reading performances, caches or writing
// rendered output. The underlying error is passed through untouched.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
