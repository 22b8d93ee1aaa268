package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
)

// PropertyKind tags the Go type of a stored property value so typed reads keep
// working after the bag has been through a JSON round trip.
type PropertyKind string

// Supported property kinds. Values of any other type are stored under KindJSON
// and come back as their generic JSON decoding (map[string]any, []any, ...).
const (
	KindBool    PropertyKind = "bool"
	KindInt     PropertyKind = "int"
	KindInt64   PropertyKind = "int64"
	KindFloat32 PropertyKind = "float32"
	KindFloat64 PropertyKind = "float64"
	KindString  PropertyKind = "string"
	KindStrings PropertyKind = "strings"
	KindJSON    PropertyKind = "json"
)

// KindOf reports the property kind used to encode v.
func KindOf(v any) PropertyKind {
	switch v.(type) {
	case bool:
		return KindBool
	case int:
		return KindInt
	case int64:
		return KindInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case string:
		return KindString
	case []string:
		return KindStrings
	default:
		return KindJSON
	}
}

// Properties is the wire representation of an item property bag. Keys are
// unique; ordering carries no meaning.
type Properties map[string]any

type propertyEnvelope struct {
	Kind  PropertyKind    `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// Clone returns a deep copy so that the snapshot and the live bag never alias.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = CloneValue(v)
	}
	return out
}

// Keys returns the property keys in ascending order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MarshalJSON encodes every value together with its kind.
func (p Properties) MarshalJSON() ([]byte, error) {
	out := make(map[string]propertyEnvelope, len(p))
	for key, value := range p {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode property %s: %w", key, err)
		}
		out[key] = propertyEnvelope{Kind: KindOf(value), Value: raw}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores values to the Go type named by their kind.
func (p *Properties) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = nil
		return nil
	}
	var raw map[string]propertyEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Properties, len(raw))
	for key, env := range raw {
		value, err := decodeProperty(env)
		if err != nil {
			return fmt.Errorf("decode property %s: %w", key, err)
		}
		out[key] = value
	}
	*p = out
	return nil
}

func decodeProperty(env propertyEnvelope) (any, error) {
	switch env.Kind {
	case KindBool:
		return decodeAs[bool](env.Value)
	case KindInt:
		return decodeAs[int](env.Value)
	case KindInt64:
		return decodeAs[int64](env.Value)
	case KindFloat32:
		return decodeAs[float32](env.Value)
	case KindFloat64:
		return decodeAs[float64](env.Value)
	case KindString:
		return decodeAs[string](env.Value)
	case KindStrings:
		return decodeAs[[]string](env.Value)
	case KindJSON, "":
		return decodeAs[any](env.Value)
	default:
		return nil, fmt.Errorf("unknown property kind %q", env.Kind)
	}
}

func decodeAs[T any](raw json.RawMessage) (any, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// CloneValue deep copies maps, slices, arrays, pointers and the exported
// fields of structs reachable from value. Scalars are returned as-is.
// Unexported struct fields are copied shallowly; cyclic pointer graphs are
// not supported.
func CloneValue(value any) any {
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		json.Number:
		return typed
	}

	source := reflect.ValueOf(value)
	switch source.Kind() {
	case reflect.Map:
		if source.IsNil() {
			return value
		}
		clone := reflect.MakeMapWithSize(source.Type(), source.Len())
		iter := source.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneIntoType(iter.Value(), source.Type().Elem()))
		}
		return clone.Interface()
	case reflect.Slice:
		if source.IsNil() {
			return value
		}
		clone := reflect.MakeSlice(source.Type(), source.Len(), source.Len())
		for i := 0; i < source.Len(); i++ {
			clone.Index(i).Set(cloneIntoType(source.Index(i), source.Type().Elem()))
		}
		return clone.Interface()
	case reflect.Array:
		clone := reflect.New(source.Type()).Elem()
		for i := 0; i < source.Len(); i++ {
			clone.Index(i).Set(cloneIntoType(source.Index(i), source.Type().Elem()))
		}
		return clone.Interface()
	case reflect.Pointer:
		if source.IsNil() {
			return value
		}
		clone := reflect.New(source.Type().Elem())
		clone.Elem().Set(cloneIntoType(source.Elem(), source.Type().Elem()))
		return clone.Interface()
	case reflect.Struct:
		clone := reflect.New(source.Type()).Elem()
		clone.Set(source)
		for i := 0; i < source.NumField(); i++ {
			if !source.Type().Field(i).IsExported() {
				continue
			}
			clone.Field(i).Set(cloneIntoType(source.Field(i), source.Type().Field(i).Type))
		}
		return clone.Interface()
	default:
		return value
	}
}

func cloneIntoType(value reflect.Value, target reflect.Type) reflect.Value {
	if !value.IsValid() || (value.Kind() == reflect.Interface && value.IsNil()) {
		return reflect.Zero(target)
	}
	cloned := CloneValue(value.Interface())
	if cloned == nil {
		return reflect.Zero(target)
	}
	clonedValue := reflect.ValueOf(cloned)
	if !clonedValue.Type().AssignableTo(target) {
		if clonedValue.Type().ConvertibleTo(target) {
			return clonedValue.Convert(target)
		}
		return value
	}
	return clonedValue
}
