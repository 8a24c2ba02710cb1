package prefs

import "fmt"

// KeyInfo describes a schema key for display purposes.
type KeyInfo struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Value   string `json:"value"`
	Default string `json:"default"`
}

// ShowAll returns every schema key with its current value.
func ShowAll(s *Store) []KeyInfo {
	result := make([]KeyInfo, 0, len(schema))
	for _, d := range schema {
		v, _ := s.Get(d.Section, d.Key)
		result = append(result, KeyInfo{
			Key:     d.Name(),
			Kind:    d.Kind.String(),
			Value:   v,
			Default: d.Value,
		})
	}
	return result
}

// GetKey returns the stored value of a dotted name such as "Settings.DNG".
// Names outside the schema resolve too if they exist in the file.
func GetKey(s *Store, name string) (string, error) {
	section, key, err := SplitName(name)
	if err != nil {
		return "", err
	}
	v, ok := s.Get(section, key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return v, nil
}

// SetKey validates and stores a value under a dotted schema name.
func SetKey(s *Store, name, value string) error {
	section, key, err := SplitName(name)
	if err != nil {
		return err
	}
	return s.Set(section, key, value)
}
