package prefs

import (
	"fmt"
	"strings"
)

// Kind is the value type of a preference key.
type Kind int

const (
	KindString Kind = iota
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

const (
	SectionSettings = "Settings"
	SectionGeneral  = "General"

	KeyDNG       = "DNG"
	KeyTIFF      = "TIFF"
	KeyThumbnail = "Thumbnail"
	KeyRotate    = "Rotate"
	KeyLanguage  = "Language"
)

// Default describes one key of the fixed preference schema together with
// the value written when the key is missing on disk.
type Default struct {
	Section string
	Key     string
	Kind    Kind
	Value   string
}

// Name returns the dotted "Section.Key" form used by the CLI and the APIs.
func (d Default) Name() string {
	return d.Section + "." + d.Key
}

var schema = []Default{
	{Section: SectionSettings, Key: KeyDNG, Kind: KindBool, Value: FormatBool(true)},
	{Section: SectionSettings, Key: KeyTIFF, Kind: KindBool, Value: FormatBool(false)},
	{Section: SectionSettings, Key: KeyThumbnail, Kind: KindBool, Value: FormatBool(false)},
	{Section: SectionSettings, Key: KeyRotate, Kind: KindBool, Value: FormatBool(false)},
	{Section: SectionGeneral, Key: KeyLanguage, Kind: KindString, Value: "en"},
}

// Schema returns the fixed schema in the order sections and keys are
// created on first run.
func Schema() []Default {
	out := make([]Default, len(schema))
	copy(out, schema)
	return out
}

// Defaults returns the schema as a section -> key -> default value map.
func Defaults() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, d := range schema {
		if out[d.Section] == nil {
			out[d.Section] = make(map[string]string)
		}
		out[d.Section][d.Key] = d.Value
	}
	return out
}

// ValidKeys returns the dotted names of all schema keys.
func ValidKeys() []string {
	keys := make([]string, 0, len(schema))
	for _, d := range schema {
		keys = append(keys, d.Name())
	}
	return keys
}

func lookup(section, key string) (Default, bool) {
	for _, d := range schema {
		if d.Section == section && d.Key == key {
			return d, true
		}
	}
	return Default{}, false
}

// SplitName splits a dotted "Section.Key" name. Matching is case-sensitive.
func SplitName(name string) (section, key string, err error) {
	section, key, ok := strings.Cut(name, ".")
	if !ok || section == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q (want Section.Key)", ErrUnknownKey, name)
	}
	return section, key, nil
}
