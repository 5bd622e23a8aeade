// Package vspipe builds command lines for the VapourSynth frame server.
package vspipe

import (
	"github.com/five82/pencode/internal/config"
)

const (
	// ArgFlag passes a script argument to vspipe.
	ArgFlag = "-a"

	// StdoutTarget makes vspipe write frames to stdout.
	StdoutTarget = "-"
)

// primeFlags limit output to zero frames so source filters build their
// index before the real run.
var primeFlags = []string{"--end", "0"}

// Invocation is a resolved vspipe command line without the binary.
type Invocation struct {
	Flags  []string
	Script string
}

// NewInvocation renders cfg's flags in file order and sets the script
// argument Input to input.
//
// Boolean values are switches: true emits the bare flag, false omits it.
// Every other value follows its flag as a separate token.
func NewInvocation(cfg config.VS, input string) Invocation {
	inputArg := "Input=" + input
	flags := make([]string, 0, 2*len(cfg.Flags)+2)
	replaced := false

	for _, f := range cfg.Flags {
		if b, ok := f.Value.(bool); ok {
			if b {
				flags = append(flags, f.Name)
			}
			continue
		}
		if f.Name == ArgFlag && !replaced {
			flags = append(flags, ArgFlag, inputArg)
			replaced = true
			continue
		}
		flags = append(flags, f.Name, config.FormatValue(f.Value))
	}
	if !replaced {
		flags = append(flags, ArgFlag, inputArg)
	}

	return Invocation{Flags: flags, Script: cfg.Script}
}

// Args returns the argument vector. When prime is set the run stops after
// zero frames.
func (i Invocation) Args(prime bool) []string {
	args := make([]string, 0, len(i.Flags)+len(primeFlags)+2)
	args = append(args, i.Flags...)
	if prime {
		args = append(args, primeFlags...)
	}
	return append(args, i.Script, StdoutTarget)
}
