package profile

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/jsonc"
)

// Sealer encrypts and decrypts secret member values. Implementations bind
// each value to its member name.
type Sealer interface {
	Seal(name string, plaintext []byte) (string, error)
	Open(name string, sealed string) ([]byte, error)
}

// Field is one decoded member of a profile document.
type Field struct {
	Name   string
	Secret bool
	Value  json.RawMessage
}

type decoded[T any] struct {
	field Field
	apply func(obj *T)
}

// encodeDocument renders the members of obj that include reports as
// overridden. Members that are not overridden are left out entirely.
func encodeDocument[T any](schema *Schema[T], obj *T, include OverrideDetector, sealer Sealer) ([]byte, error) {
	doc := make(map[string]json.RawMessage)
	for _, m := range schema.members {
		if !include.Overridden(m.name) {
			continue
		}
		data, err := m.encode(obj)
		if err != nil {
			return nil, err
		}
		if m.secret {
			sealed, err := sealer.Seal(m.name, data)
			if err != nil {
				return nil, err
			}
			if data, err = json.Marshal(sealed); err != nil {
				return nil, err
			}
		}
		doc[m.name] = data
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// decodeDocument parses data and opens every secret member it carries.
// Keys that are not schema members are ignored. Failures are collected
// across all members so a wrong key reports every secret at once.
func decodeDocument[T any](profile string, schema *Schema[T], data []byte, sealer Sealer) ([]decoded[T], error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, &DecodeError{Profile: profile, Err: err}
	}

	var (
		out  []decoded[T]
		errs []error
	)
	for _, m := range schema.members {
		value, ok := doc[m.name]
		if !ok {
			continue
		}
		if m.secret {
			plain, err := openValue(m.name, value, sealer)
			if err != nil {
				errs = append(errs, &DecryptionError{Profile: profile, Member: m.name, Err: err})
				continue
			}
			value = plain
		}
		apply, err := m.decode(value)
		if err != nil {
			errs = append(errs, &DecodeError{Profile: profile, Member: m.name, Err: err})
			continue
		}
		out = append(out, decoded[T]{
			field: Field{Name: m.name, Secret: m.secret, Value: value},
			apply: apply,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func openValue(name string, value json.RawMessage, sealer Sealer) ([]byte, error) {
	var sealed string
	if err := json.Unmarshal(value, &sealed); err != nil {
		return nil, errors.New("secret value is not a sealed string")
	}
	return sealer.Open(name, sealed)
}
