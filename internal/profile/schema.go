package profile

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Member describes one profile-eligible field of T. Only fields registered
// in a Schema take part in profile persistence; everything else on T is
// invisible here.
type Member[T any] struct {
	name   string
	secret bool
	encode func(obj *T) ([]byte, error)
	decode func(data []byte) (func(obj *T), error)
}

func (m Member[T]) Name() string { return m.name }

func (m Member[T]) Secret() bool { return m.secret }

// Param registers field under name. The accessor returns a pointer into
// obj, so unexported fields are as readable and writable as exported ones.
func Param[T, V any](name string, field func(obj *T) *V) Member[T] {
	return Member[T]{
		name: name,
		encode: func(obj *T) ([]byte, error) {
			return json.Marshal(field(obj))
		},
		decode: func(data []byte) (func(obj *T), error) {
			v := new(V)
			if err := json.Unmarshal(data, v); err != nil {
				return nil, err
			}
			return func(obj *T) { *field(obj) = *v }, nil
		},
	}
}

// Secret registers field like Param and marks its value for encryption.
func Secret[T, V any](name string, field func(obj *T) *V) Member[T] {
	m := Param(name, field)
	m.secret = true
	return m
}

// Schema is the ordered set of profile members of T.
type Schema[T any] struct {
	members []Member[T]
	index   map[string]int
}

func NewSchema[T any](members ...Member[T]) (*Schema[T], error) {
	s := &Schema[T]{index: make(map[string]int, len(members))}
	for _, m := range members {
		if m.name == "" {
			return nil, errors.New("profile member name is empty")
		}
		if m.encode == nil || m.decode == nil {
			return nil, fmt.Errorf("profile member %s has no accessor", m.name)
		}
		if _, dup := s.index[m.name]; dup {
			return nil, fmt.Errorf("profile member %s registered twice", m.name)
		}
		s.index[m.name] = len(s.members)
		s.members = append(s.members, m)
	}
	return s, nil
}

// MustSchema is NewSchema for package-level registrations.
func MustSchema[T any](members ...Member[T]) *Schema[T] {
	s, err := NewSchema(members...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema[T]) Members() []Member[T] {
	out := make([]Member[T], len(s.members))
	copy(out, s.members)
	return out
}

func (s *Schema[T]) Lookup(name string) (Member[T], bool) {
	i, ok := s.index[name]
	if !ok {
		return Member[T]{}, false
	}
	return s.members[i], true
}

// OverrideDetector reports whether a member was supplied explicitly for
// the current run.
type OverrideDetector interface {
	Overridden(member string) bool
}

type OverrideFunc func(member string) bool

func (f OverrideFunc) Overridden(member string) bool { return f(member) }
