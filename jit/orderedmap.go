package jit

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack"
)

// OrderedMap is a response object whose keys iterate and marshal in insertion order rather than a
// Go map's randomized order, adapted from the teacher's executor.OrderedMap. Every ObjectPlan's
// completed fields are written into one of these, so the wire-encoded response's key order matches
// the expanded document's selection order regardless of which JSON or msgpack encoder is in play.
type OrderedMap struct {
	m     map[string]interface{}
	order []string
}

func newOrderedMap() *OrderedMap {
	return &OrderedMap{m: map[string]interface{}{}}
}

// Set assigns key's value, recording key's insertion position the first time it is set.
func (m *OrderedMap) Set(key string, value interface{}) {
	if _, ok := m.m[key]; !ok {
		m.order = append(m.order, key)
	}
	m.m[key] = value
}

func (m *OrderedMap) Get(key string) (interface{}, bool) {
	v, ok := m.m[key]
	return v, ok
}

func (m *OrderedMap) Len() int { return len(m.m) }

// Keys returns every key in insertion order.
func (m *OrderedMap) Keys() []string { return m.order }

func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	pairs := make([][]byte, len(m.order))
	for i, key := range m.order {
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valueJSON, err := json.Marshal(m.m[key])
		if err != nil {
			return nil, err
		}
		pairs[i] = bytes.Join([][]byte{keyJSON, valueJSON}, []byte{':'})
	}
	return append(append([]byte{'{'}, bytes.Join(pairs, []byte{','})...), '}'), nil
}

// EncodeMsgpack implements msgpack.CustomEncoder so WireFormatMsgpack output preserves the same key
// order as the JSON path.
func (m *OrderedMap) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(m.order)); err != nil {
		return err
	}
	for _, key := range m.order {
		if err := enc.EncodeString(key); err != nil {
			return err
		}
		if err := enc.Encode(m.m[key]); err != nil {
			return err
		}
	}
	return nil
}
