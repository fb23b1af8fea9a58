package core

type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
	TypeObject  SchemaType = "object"
)

// Schema is the provider-neutral declaration of a model reply. Providers
// translate it to their native form; MinItems/MaxItems/Minimum/Maximum are
// only enforced by JSONSchema based validation.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Order       []string // property order, also the required list
	Items       *Schema
	MinItems    int
	MaxItems    int
	MinLength   int
	Minimum     *float64
	Maximum     *float64
}

func String() *Schema { return &Schema{Type: TypeString} }

func NonEmptyString() *Schema { return &Schema{Type: TypeString, MinLength: 1} }

func Number() *Schema { return &Schema{Type: TypeNumber} }

func ArrayOf(items *Schema, n int) *Schema {
	return &Schema{Type: TypeArray, Items: items, MinItems: n, MaxItems: n}
}

// Object builds an object schema whose properties are all required, in the
// given order. fields alternates name, schema.
func Object(fields ...any) *Schema {
	s := &Schema{Type: TypeObject, Properties: map[string]*Schema{}}
	for i := 0; i+1 < len(fields); i += 2 {
		name := fields[i].(string)
		s.Properties[name] = fields[i+1].(*Schema)
		s.Order = append(s.Order, name)
	}
	return s
}

// JSONSchema renders the schema as a JSON Schema document (draft-07 subset).
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
		if len(s.Order) > 0 {
			req := make([]any, len(s.Order))
			for i, n := range s.Order {
				req[i] = n
			}
			out["required"] = req
		}
	case TypeArray:
		out["items"] = s.Items.JSONSchema()
		if s.MinItems > 0 {
			out["minItems"] = s.MinItems
		}
	case TypeString:
		if s.MinLength > 0 {
			out["minLength"] = s.MinLength
		}
	case TypeNumber, TypeInteger:
		if s.Minimum != nil {
			out["minimum"] = *s.Minimum
		}
		if s.Maximum != nil {
			out["maximum"] = *s.Maximum
		}
	}
	return out
}
