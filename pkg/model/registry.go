package model

import "fmt"

// Registry indexes every field of a schema by id. It is built once per load
// and never mutated afterwards.
type Registry struct {
	fields map[string]*Field
	order  []string
}

// NewRegistry indexes the fields of schema. Duplicate ids are rejected.
func NewRegistry(schema *FormSchema) (*Registry, error) {
	reg := &Registry{fields: make(map[string]*Field)}
	if schema == nil {
		return reg, nil
	}
	for _, group := range schema.Groups {
		for _, field := range group.Fields {
			if _, exists := reg.fields[field.ID]; exists {
				return nil, fmt.Errorf("model: duplicate field id %q", field.ID)
			}
			reg.fields[field.ID] = field
			reg.order = append(reg.order, field.ID)
		}
	}
	return reg, nil
}

// Lookup returns the field registered under id.
func (r *Registry) Lookup(id string) (*Field, bool) {
	if r == nil {
		return nil, false
	}
	field, ok := r.fields[id]
	return field, ok
}

// Has reports whether id is a registered field.
func (r *Registry) Has(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}

// IDs returns every field id in schema order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Calculated returns the calculated fields in schema order.
func (r *Registry) Calculated() []*Field {
	if r == nil {
		return nil
	}
	var out []*Field
	for _, id := range r.order {
		if field := r.fields[id]; field.Calculated() {
			out = append(out, field)
		}
	}
	return out
}

// Len returns the number of registered fields.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
