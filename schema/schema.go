// Package schema describes the keyword arguments of a tool and translates
// JSON-Schema-shaped definitions, as advertised by remote tool servers,
// into ordered parameter lists used for prompt construction and input
// normalization.
package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Parameter describes one named argument of a tool.
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required" yaml:"required"`
}

// Property is a single entry of a definition's properties mapping.
type Property struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Definition is a JSON-Schema-shaped description of a tool's arguments.
// Properties preserve their declared order across JSON decoding, since the
// order decides which parameter receives unstructured string input.
type Definition struct {
	Type       string                                    `json:"type,omitempty" yaml:"type,omitempty"`
	Properties *orderedmap.OrderedMap[string, *Property] `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string                                  `json:"required,omitempty" yaml:"required,omitempty"`
}

// NewDefinition returns an empty object definition.
func NewDefinition() *Definition {
	return &Definition{
		Type:       "object",
		Properties: orderedmap.New[string, *Property](),
	}
}

// AddProperty appends a property, keeping declaration order.
func (d *Definition) AddProperty(name string, prop *Property, required bool) *Definition {
	if d.Properties == nil {
		d.Properties = orderedmap.New[string, *Property]()
	}
	d.Properties.Set(name, prop)
	if required {
		d.Required = append(d.Required, name)
	}
	return d
}

// ParseParameters translates a definition into an ordered parameter list.
// The definition comes from an external, loosely trusted source, so absent
// fields degrade to defaults instead of failing: a missing type becomes
// "string", a missing description becomes empty text, and a name absent from
// the required list is optional. A nil definition yields no parameters.
func ParseParameters(def *Definition) []Parameter {
	if def == nil || def.Properties == nil {
		return nil
	}

	required := make(map[string]bool, len(def.Required))
	for _, name := range def.Required {
		required[name] = true
	}

	var params []Parameter
	for pair := def.Properties.Oldest(); pair != nil; pair = pair.Next() {
		p := Parameter{
			Name:     pair.Key,
			Type:     "string",
			Required: required[pair.Key],
		}
		if prop := pair.Value; prop != nil {
			if prop.Type != "" {
				p.Type = prop.Type
			}
			p.Description = prop.Description
		}
		params = append(params, p)
	}
	return params
}
