package schema

import "encoding/json"

// Schema is the contract for typed agent inputs and outputs. Every schema
// renders itself as text for prompt assembly.
type Schema interface {
	String() string
}

// Stringify returns the textual form of a schema for inclusion in a prompt.
func Stringify(s Schema) string {
	if v, ok := s.(String); ok {
		return string(v)
	}
	return s.String()
}

// ToBytes returns the serialized form of a schema.
func ToBytes(s Schema) []byte {
	if v, ok := s.(String); ok {
		return []byte(v)
	}
	bs, _ := json.Marshal(s)
	return bs
}
