// Package readme turns the project README.md into a plain-text README.txt.
package readme

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// breakTags are removed from every conversion.
var breakTags = []string{"</br>", "<br/>"}

// Options controls a conversion.
type Options struct {
	// Strip lists additional literal strings to remove, such as an
	// embedded image link that has no meaning in plain text.
	Strip []string
	// CRLF re-expands line endings to \r\n after normalization.
	CRLF bool
}

// DefaultCRLF reports whether the running platform expects \r\n.
func DefaultCRLF() bool {
	return runtime.GOOS == "windows"
}

// Convert normalizes line endings to \n, removes the break tags and every
// literal in opts.Strip, then applies CRLF if requested.
func Convert(src string, opts Options) string {
	out := strings.ReplaceAll(src, "\r\n", "\n")
	for _, tag := range breakTags {
		out = strings.ReplaceAll(out, tag, "")
	}
	for _, s := range opts.Strip {
		if s == "" {
			continue
		}
		out = strings.ReplaceAll(out, s, "")
	}
	if opts.CRLF {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return out
}

// ConvertFile reads in, converts it and writes the result to out.
func ConvertFile(in, out string, opts Options) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}
	if err := os.WriteFile(out, []byte(Convert(string(data), opts)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
