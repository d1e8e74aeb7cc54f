package schema

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

var (
	reflectCache   = make(map[reflect.Type]*Definition)
	reflectCacheMu sync.RWMutex
)

// Reflect builds a definition from a Go struct type, for tools implemented
// natively in this process. Property order follows field declaration order.
// Results are cached per type.
func Reflect(t reflect.Type) (*Definition, error) {
	reflectCacheMu.RLock()
	def, ok := reflectCache[t]
	reflectCacheMu.RUnlock()
	if ok {
		return def, nil
	}

	def, err := buildDefinition(t)
	if err != nil {
		return nil, err
	}

	reflectCacheMu.Lock()
	reflectCache[t] = def
	reflectCacheMu.Unlock()

	return def, nil
}

func buildDefinition(t reflect.Type) (*Definition, error) {
	r := new(jsonschema.Reflector)
	// Struct names may repeat across packages, which makes $defs refs
	// ambiguous. Qualify each name with a hash of its package path.
	// See https://github.com/invopop/jsonschema/issues/42.
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct && t.PkgPath() != "" {
			name = name + "@" + strconv.FormatUint(xxhash.Sum64String(t.PkgPath()+"/"+t.Name()), 10)
		}
		return name
	}

	js := r.ReflectFromType(t)

	rootID := strings.TrimPrefix(js.Ref, "#/$defs/")
	defs := make(map[string]*jsonschema.Schema, len(js.Definitions))
	var root *jsonschema.Schema
	for name, d := range js.Definitions {
		if name == rootID {
			root = d
		} else {
			defs[name] = d
		}
	}
	if root == nil {
		return nil, errors.Newf("no schema definition for type %s", t.String())
	}

	def := NewDefinition()
	def.Required = root.Required
	if root.Properties == nil {
		return def, nil
	}
	for pair := root.Properties.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			if resolved, ok := defs[strings.TrimPrefix(child.Ref, "#/$defs/")]; ok {
				child = resolved
			}
		}
		typ := child.Type
		if typ == "" {
			// unresolved refs and typeless nodes describe nested structures
			typ = "object"
		}
		def.Properties.Set(pair.Key, &Property{
			Type:        typ,
			Description: child.Description,
		})
	}
	return def, nil
}
