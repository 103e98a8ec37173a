package spec

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

type optionalState uint8

const (
	stateUnset optionalState = iota
	stateDefault
	stateExplicit
)

// Optional is an attribute value that remembers whether it was written in
// the document, filled in from a default, or never set at all.
type Optional[T comparable] struct {
	value T
	state optionalState
}

func Some[T comparable](value T) Optional[T] {
	return Optional[T]{value: value, state: stateExplicit}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.state != stateUnset
}

// Value returns the held value, or the zero value of T when unset.
func (o Optional[T]) Value() T {
	return o.value
}

func (o Optional[T]) Or(fallback T) T {
	if o.state == stateUnset {
		return fallback
	}
	return o.value
}

func (o Optional[T]) IsSet() bool      { return o.state != stateUnset }
func (o Optional[T]) IsExplicit() bool { return o.state == stateExplicit }
func (o Optional[T]) IsDefault() bool  { return o.state == stateDefault }

// SetDefault fills an unset value; explicit and default values are kept.
func (o *Optional[T]) SetDefault(value T) {
	if o.state == stateUnset {
		o.value = value
		o.state = stateDefault
	}
}

// Override returns other when it is set and o otherwise.
func (o Optional[T]) Override(other Optional[T]) Optional[T] {
	if other.IsSet() {
		return other
	}
	return o
}

func (o Optional[T]) Equal(other Optional[T]) bool {
	return o.state == other.state && o.value == other.value
}

func (o Optional[T]) String() string {
	switch o.state {
	case stateUnset:
		return "<unset>"
	case stateDefault:
		return fmt.Sprintf("%v (default)", o.value)
	}
	return fmt.Sprint(o.value)
}

func (o *Optional[T]) UnmarshalXMLAttr(attr xml.Attr) error {
	raw := strings.TrimSpace(attr.Value)
	var err error
	switch p := any(&o.value).(type) {
	case *string:
		*p = attr.Value
	case *int:
		*p, err = strconv.Atoi(raw)
	case *float64:
		*p, err = strconv.ParseFloat(raw, 64)
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *GID:
		var v uint64
		v, err = strconv.ParseUint(raw, 10, 32)
		*p = GID(v)
	default:
		return fmt.Errorf("attribute %q: unsupported type %T", attr.Name.Local, o.value)
	}
	if err != nil {
		return fmt.Errorf("attribute %q: %w", attr.Name.Local, err)
	}
	o.state = stateExplicit
	return nil
}
