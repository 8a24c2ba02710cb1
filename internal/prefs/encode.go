package prefs

import (
	"bytes"
	"io"
	"strings"

	"gopkg.in/ini.v1"
)

// encode writes f the way the legacy tool does: a "[Section]" header, one
// "Key = Value" line per option and a blank line after every section.
// Values go out verbatim, with no quoting or column alignment. ini.v1's own
// writer only takes those settings as package-level variables, so the
// layout is produced here from its parsed model instead.
func encode(w io.Writer, f *ini.File) (int64, error) {
	var buf bytes.Buffer
	for _, sec := range f.Sections() {
		keys := sec.Keys()
		if sec.Name() == ini.DefaultSection && len(keys) == 0 {
			continue
		}
		buf.WriteString("[" + sec.Name() + "]\n")
		for _, k := range keys {
			// Multi-line values continue on indented lines.
			value := strings.ReplaceAll(k.Value(), "\n", "\n\t")
			buf.WriteString(k.Name() + " = " + value + "\n")
		}
		buf.WriteString("\n")
	}
	return buf.WriteTo(w)
}
