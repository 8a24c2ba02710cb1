// Package prefs persists the raw2dng user preferences in an INI file.
//
// A Store is opened once at startup. Missing keys of the fixed schema are
// filled with their defaults and written back; values already on disk are
// never replaced. Every mutator rewrites the whole file before returning.
//
// The in-place write mode is not crash safe and nothing coordinates two
// processes writing the same file: the last writer wins. WithAtomicWrite
// switches to write-then-rename.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/ini.v1"
)

// FileName is the preferences file kept next to the executable.
const FileName = "preferences.ini"

// Keys and section names are case-sensitive, which is the ini.v1 default.
// Values are kept verbatim: '#' and ';' are part of the value, surrounding
// quotes are not stripped and a trailing backslash does not join lines.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
}

// Option configures a Store.
type Option func(*Store)

// WithAtomicWrite makes every write-back go through a temporary file that
// is synced and renamed over the target.
func WithAtomicWrite() Option {
	return func(s *Store) { s.atomic = true }
}

// WithLogger sets the logger used for write-back and default-fill events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is the typed, defaulted, auto-persisting preference set.
type Store struct {
	mu     sync.Mutex
	path   string
	atomic bool
	logger *slog.Logger
	file   *ini.File
}

// Entry is one stored option.
type Entry struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

// DefaultPath returns the location of preferences.ini beside the running
// executable, independent of the working directory.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// OpenDefault opens the store at DefaultPath.
func OpenDefault(opts ...Option) (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

// Open loads the preferences at path. A missing file is not an error: all
// defaults are filled in and the file is created. A file the INI parser
// rejects yields an error wrapping ErrMalformed.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the file from disk and fills missing defaults again,
// writing back only if something was added.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() error {
	f, err := readFile(s.path)
	if err != nil {
		return err
	}
	s.file = f

	added := fillDefaults(f)
	if added == 0 {
		return nil
	}
	s.logger.Info("filled missing preferences", "path", s.path, "added", added)
	return s.save()
}

func readFile(path string) (*ini.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ini.Empty(loadOptions), nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return f, nil
}

// fillDefaults adds missing schema sections and keys and reports how many
// additions were made.
func fillDefaults(f *ini.File) int {
	added := 0
	for _, d := range schema {
		sec, err := f.GetSection(d.Section)
		if err != nil {
			sec = f.Section(d.Section)
			added++
		}
		if !sec.HasKey(d.Key) {
			sec.Key(d.Key).SetValue(d.Value)
			added++
		}
	}
	return added
}

// DNG reports whether DNG output is enabled.
func (s *Store) DNG() (bool, error) { return s.Bool(SectionSettings, KeyDNG) }

// TIFF reports whether TIFF output is enabled.
func (s *Store) TIFF() (bool, error) { return s.Bool(SectionSettings, KeyTIFF) }

// Thumbnail reports whether a thumbnail is written next to the output.
func (s *Store) Thumbnail() (bool, error) { return s.Bool(SectionSettings, KeyThumbnail) }

// Rotate reports whether output is rotated per the camera orientation.
func (s *Store) Rotate() (bool, error) { return s.Bool(SectionSettings, KeyRotate) }

// Language returns the stored language verbatim.
func (s *Store) Language() string {
	v, _ := s.Get(SectionGeneral, KeyLanguage)
	return v
}

// SetDNG stores the DNG flag and writes the file, even if unchanged.
func (s *Store) SetDNG(v bool) error { return s.put(SectionSettings, KeyDNG, FormatBool(v)) }

// SetTIFF stores the TIFF flag and writes the file.
func (s *Store) SetTIFF(v bool) error { return s.put(SectionSettings, KeyTIFF, FormatBool(v)) }

// SetThumbnail stores the Thumbnail flag and writes the file.
func (s *Store) SetThumbnail(v bool) error { return s.put(SectionSettings, KeyThumbnail, FormatBool(v)) }

// SetRotate stores the Rotate flag and writes the file.
func (s *Store) SetRotate(v bool) error { return s.put(SectionSettings, KeyRotate, FormatBool(v)) }

// SetLanguage stores lang under General.Language and writes the file.
func (s *Store) SetLanguage(lang string) error {
	return s.put(SectionGeneral, KeyLanguage, lang)
}

// Get returns the raw value of any stored option, including options that
// are not part of the schema.
func (s *Store) Get(section, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(section, key)
}

func (s *Store) get(section, key string) (string, bool) {
	sec, err := s.file.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return "", false
	}
	return sec.Key(key).String(), true
}

// Bool parses the stored value of section.key as a boolean. Unrecognized
// tokens yield a *ParseError; there is no fallback to the default.
func (s *Store) Bool(section, key string) (bool, error) {
	v, ok := s.Get(section, key)
	if !ok {
		return false, fmt.Errorf("%w: %s.%s", ErrUnknownKey, section, key)
	}
	b, err := ParseBool(v)
	if err != nil {
		return false, &ParseError{Section: section, Key: key, Value: v}
	}
	return b, nil
}

// Set validates value against the schema kind of section.key, stores it
// and writes the file. Boolean values are normalized to True/False.
func (s *Store) Set(section, key, value string) error {
	d, ok := lookup(section, key)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownKey, section, key)
	}
	if d.Kind == KindBool {
		b, err := ParseBool(value)
		if err != nil {
			return &ParseError{Section: section, Key: key, Value: value}
		}
		value = FormatBool(b)
	}
	return s.put(section, key, value)
}

// Reset restores every schema key to its default and writes the file.
// Options outside the schema are kept.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range schema {
		s.file.Section(d.Section).Key(d.Key).SetValue(d.Value)
	}
	return s.save()
}

// Entries returns every stored option in file order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, sec := range s.file.Sections() {
		for _, k := range sec.Keys() {
			out = append(out, Entry{Section: sec.Name(), Key: k.Name(), Value: k.String()})
		}
	}
	return out
}

// Snapshot returns a copy of the stored data as section -> key -> value.
func (s *Store) Snapshot() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, e := range s.Entries() {
		if out[e.Section] == nil {
			out[e.Section] = make(map[string]string)
		}
		out[e.Section][e.Key] = e.Value
	}
	return out
}

// put stores value and performs an unconditional full write-back.
func (s *Store) put(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.Section(section).Key(key).SetValue(value)
	return s.save()
}
