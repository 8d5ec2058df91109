// Package buildinfo holds the one bit of CLI plumbing every command in
// cmd/ repeats: a -version flag that prints pkg/version's build info and
// exits before any real work starts. It lives under internal/ rather
// than pkg/ because nothing outside this module's own binaries needs it
// — the internal/mcp convention of keeping non-API surface out of pkg/.
package buildinfo

import (
	"fmt"
	"io"

	"github.com/openstoryteller/chip32/pkg/version"
)

// PrintIfRequested writes the one-line build string to w and reports
// true when requested is set, so a cmd/* main can write:
//
//	if buildinfo.PrintIfRequested(os.Stdout, *showVersion) {
//	    return
//	}
func PrintIfRequested(w io.Writer, requested bool) bool {
	if !requested {
		return false
	}
	fmt.Fprintln(w, version.GetBuildInfo())
	return true
}

// PrintFullIfRequested is PrintIfRequested's verbose counterpart, used
// by commands whose --version flag is documented to print the full
// multi-line banner (version.GetFullVersion) rather than the one-liner.
func PrintFullIfRequested(w io.Writer, requested bool) bool {
	if !requested {
		return false
	}
	fmt.Fprintln(w, version.GetFullVersion())
	return true
}
