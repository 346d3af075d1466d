package profile

import "fmt"

// SpecError reports a profile spec without a name.
type SpecError struct {
	Spec string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("profile spec %q: name is empty", e.Spec)
}

// IoError reports a profile file that could not be read, written or removed.
type IoError struct {
	Profile string
	Path    string
	Op      string
	Err     error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// DecodeError reports a document, or a member value inside it, that does
// not have the expected shape. Member is empty for document-level failures.
type DecodeError struct {
	Profile string
	Member  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("malformed document: %v", e.Err)
	}
	return fmt.Sprintf("member %s: %v", e.Member, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecryptionError reports a secret member that could not be opened with
// the resolved key. The value is never treated as plaintext.
type DecryptionError struct {
	Profile string
	Member  string
	Err     error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("cannot decrypt member %s (wrong key?): %v", e.Member, e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// LoadError wraps any failure while applying a profile.
type LoadError struct {
	Profile string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load profile %q: %v", e.Profile, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError wraps any failure while writing a profile.
type SaveError struct {
	Profile string
	Err     error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save profile %q: %v", e.Profile, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
