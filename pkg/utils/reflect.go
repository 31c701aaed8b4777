package utils

import (
	"reflect"
	"strings"
	"time"
)

// ENV_ALIASES_TAG lists extra environment variables (comma-separated)
// that may set a leaf field.
const ENV_ALIASES_TAG = "env_aliases"

// Leaf is a settable field of a nested config struct.
type Leaf struct {
	// Key is the dotted path of tag names, e.g. `scaffolding.server_ip`
	Key string
	// EnvAliases come from the leaf's own env_aliases tag
	EnvAliases []string
	// Value is the field's current value
	Value any
}

// Leaves walks a struct (or pointer to one) depth first, and returns every
// field that is not itself a struct. Keys are built from the given tag,
// falling back to the field name. time.Time is treated as a leaf.
func Leaves(i any, tag string) []Leaf {
	v := reflect.ValueOf(i)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return appendLeaves(nil, v, "", tag)
}

var timeType = reflect.TypeOf(time.Time{})

func appendLeaves(leaves []Leaf, v reflect.Value, prefix string, tag string) []Leaf {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get(tag)
		if name == "" {
			name = field.Name
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		if field.Type.Kind() == reflect.Struct && field.Type != timeType {
			leaves = appendLeaves(leaves, v.Field(i), name, tag)
			continue
		}

		leaf := Leaf{Key: name, Value: v.Field(i).Interface()}
		for _, alias := range strings.Split(field.Tag.Get(ENV_ALIASES_TAG), ",") {
			if alias = strings.TrimSpace(alias); alias != "" {
				leaf.EnvAliases = append(leaf.EnvAliases, alias)
			}
		}
		leaves = append(leaves, leaf)
	}
	return leaves
}
