package journal

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/rewind"
)

// TypeCodec encodes commands as flat JSON objects with an injected
// "type" discriminator and decodes them back through a name registry.
// It suits commands that marshal themselves with encoding/json; a
// command must not use "type" as one of its own field keys.
type TypeCodec[T any] struct {
	factories map[string]func() rewind.Command[T]
	names     map[reflect.Type]string
}

// NewTypeCodec returns an empty codec; register every command type the
// journal may contain before loading.
func NewTypeCodec[T any]() *TypeCodec[T] {
	return &TypeCodec[T]{
		factories: make(map[string]func() rewind.Command[T]),
		names:     make(map[reflect.Type]string),
	}
}

// Register maps a type name to a factory producing a zero command of
// that type, typically func() rewind.Command[T] { return &Insert{} }.
func (c *TypeCodec[T]) Register(name string, factory func() rewind.Command[T]) {
	c.factories[name] = factory
	c.names[reflect.TypeOf(factory())] = name
}

// EncodeCommand marshals cmd and injects its registered type name.
func (c *TypeCodec[T]) EncodeCommand(cmd rewind.Command[T]) ([]byte, error) {
	name, ok := c.names[reflect.TypeOf(cmd)]
	if !ok {
		return nil, fmt.Errorf("unregistered command type %T", cmd)
	}
	fields, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(fields, "type", name)
}

// DecodeCommand reads the type discriminator and unmarshals into a
// fresh command from the registry.
func (c *TypeCodec[T]) DecodeCommand(data []byte) (rewind.Command[T], error) {
	name := gjson.GetBytes(data, "type")
	if !name.Exists() {
		return nil, fmt.Errorf("%w: missing command type", ErrMalformed)
	}
	factory, ok := c.factories[name.String()]
	if !ok {
		return nil, fmt.Errorf("unregistered command type %q", name.String())
	}
	cmd := factory()
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}
