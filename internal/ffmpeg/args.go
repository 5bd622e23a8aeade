// Package ffmpeg derives encoder command lines from the configured template
// and reads ffmpeg's progress output.
package ffmpeg

import (
	"github.com/five82/pencode/internal/config"
	perrors "github.com/five82/pencode/internal/errors"
	"github.com/five82/pencode/internal/util"
)

// InputFlag marks a value that is expanded with the source path.
const InputFlag = "-i"

// Args is an ordered ffmpeg argument vector. Flags are located by their
// first occurrence, and the token after a flag is its value.
type Args struct {
	tokens []string
	index  map[string]int
}

// NewArgs copies tokens and indexes the first position of every token.
func NewArgs(tokens []string) *Args {
	a := &Args{
		tokens: append([]string(nil), tokens...),
		index:  make(map[string]int, len(tokens)),
	}
	for i, tok := range a.tokens {
		if _, seen := a.index[tok]; !seen {
			a.index[tok] = i
		}
	}
	return a
}

// Clone returns an independent copy sharing the position index.
func (a *Args) Clone() *Args {
	return &Args{
		tokens: append([]string(nil), a.tokens...),
		index:  a.index,
	}
}

// valueIndex returns the position of the value following flag.
func (a *Args) valueIndex(flag string) (int, bool) {
	i, ok := a.index[flag]
	if !ok || i+1 >= len(a.tokens) {
		return 0, false
	}
	return i + 1, true
}

// Has reports whether flag is present with a value slot.
func (a *Args) Has(flag string) bool {
	_, ok := a.valueIndex(flag)
	return ok
}

// Value returns the value following flag.
func (a *Args) Value(flag string) (string, bool) {
	i, ok := a.valueIndex(flag)
	if !ok {
		return "", false
	}
	return a.tokens[i], true
}

// Set replaces the value following flag.
func (a *Args) Set(flag, value string) error {
	i, ok := a.valueIndex(flag)
	if !ok {
		return undefinedFlag(flag)
	}
	a.tokens[i] = value
	return nil
}

// undefinedFlag reports an override for a flag the template does not define.
func undefinedFlag(flag string) error {
	return perrors.NewConfigError(flag, config.ErrUndefinedFlag)
}

// ExpandInputs substitutes {file} in the value of every -i flag.
// Unknown placeholders expand to the empty string.
func (a *Args) ExpandInputs(file string) {
	vars := map[string]string{"file": file}
	for i := 0; i+1 < len(a.tokens); i++ {
		if a.tokens[i] == InputFlag {
			a.tokens[i+1] = util.ExpandTemplate(a.tokens[i+1], vars)
		}
	}
}

// Tokens returns a copy of the argument vector.
func (a *Args) Tokens() []string {
	return append([]string(nil), a.tokens...)
}
