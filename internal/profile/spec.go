package profile

import "strings"

const (
	// DefaultProfile is loaded automatically when its file exists and is the
	// target of a bare --save-profile.
	DefaultProfile = "default"
	Separator      = ":"
)

// Spec names a profile and, optionally, the key its secret members are
// sealed with. An empty Key means the device fingerprint is used.
type Spec struct {
	Name string
	Key  string
}

func (s Spec) HasKey() bool {
	return s.Key != ""
}

// String renders the spec without its key.
func (s Spec) String() string {
	return s.Name
}

// ParseSpec splits "<name>" or "<name>:<key>". Segments after the key are
// ignored, and an empty key segment counts as no key.
func ParseSpec(raw string) (Spec, error) {
	parts := strings.Split(raw, Separator)
	spec := Spec{Name: parts[0]}
	if len(parts) > 1 {
		spec.Key = parts[1]
	}
	if spec.Name == "" {
		return Spec{}, &SpecError{Spec: raw}
	}
	return spec, nil
}
