package tables

import (
	"reflect"
	"strconv"
	"strings"
)

// Accessor is a dotted path that resolves a value from a record, such as
// "country.capital" or "tags.0". Each segment is looked up as a map key, a
// struct field (by name, by json/bun/db tag, or ignoring case and
// underscores), a method without arguments, or a slice index.
type Accessor string

// Bits returns the path segments.
func (a Accessor) Bits() []string {
	if a == "" {
		return nil
	}
	return strings.Split(string(a), ".")
}

// Resolve walks the path through record. A missing segment or a nil
// intermediate value returns an error wrapping ErrMissingValue.
func (a Accessor) Resolve(record any) (any, error) {
	current := record
	for _, bit := range a.Bits() {
		next, err := resolveBit(current, bit)
		if err != nil {
			return nil, NewError(KindNotFound, "failed to resolve "+strconv.Quote(string(a))+" at "+strconv.Quote(bit), err)
		}
		current = next
	}
	return current, nil
}

// Penultimate resolves all segments but the last and returns the resolved
// value together with the remaining segment.
func (a Accessor) Penultimate(record any) (any, string, error) {
	bits := a.Bits()
	if len(bits) == 0 {
		return record, "", nil
	}
	parent, err := Accessor(strings.Join(bits[:len(bits)-1], ".")).Resolve(record)
	return parent, bits[len(bits)-1], err
}

func resolveBit(current any, bit string) (any, error) {
	if current == nil {
		return nil, ErrMissingValue
	}

	value := reflect.ValueOf(current)
	if value.Kind() == reflect.Pointer && value.IsNil() {
		return nil, ErrMissingValue
	}
	if method, ok := findMethod(value, bit); ok {
		return callMethod(method)
	}

	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, ErrMissingValue
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, ErrMissingValue
		}
		item := value.MapIndex(reflect.ValueOf(bit).Convert(value.Type().Key()))
		if !item.IsValid() {
			return nil, ErrMissingValue
		}
		return item.Interface(), nil
	case reflect.Struct:
		if field, ok := findField(value, bit); ok {
			return field.Interface(), nil
		}
		if method, ok := findMethod(value, bit); ok {
			return callMethod(method)
		}
		return nil, ErrMissingValue
	case reflect.Slice, reflect.Array:
		index, err := strconv.Atoi(bit)
		if err != nil || index < 0 || index >= value.Len() {
			return nil, ErrMissingValue
		}
		return value.Index(index).Interface(), nil
	default:
		return nil, ErrMissingValue
	}
}

func findField(value reflect.Value, bit string) (reflect.Value, bool) {
	typ := value.Type()
	if field, ok := typ.FieldByName(bit); ok && field.IsExported() {
		return value.FieldByIndex(field.Index), true
	}

	folded := foldName(bit)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		if tagName(field) == bit || foldName(field.Name) == folded {
			return value.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func findMethod(value reflect.Value, bit string) (reflect.Value, bool) {
	if !value.IsValid() {
		return reflect.Value{}, false
	}
	typ := value.Type()
	candidates := []string{bit}
	if folded := foldName(bit); folded != bit {
		for i := 0; i < typ.NumMethod(); i++ {
			if name := typ.Method(i).Name; foldName(name) == folded {
				candidates = append(candidates, name)
			}
		}
	}
	for _, name := range candidates {
		method := value.MethodByName(name)
		if !method.IsValid() {
			continue
		}
		mt := method.Type()
		if mt.NumIn() != 0 || mt.NumOut() == 0 || mt.NumOut() > 2 {
			continue
		}
		if mt.NumOut() == 2 && !mt.Out(1).Implements(errorType) {
			continue
		}
		return method, true
	}
	return reflect.Value{}, false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func callMethod(method reflect.Value) (any, error) {
	out := method.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func tagName(field reflect.StructField) string {
	for _, key := range []string{"table", "json", "bun", "db"} {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

func foldName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}
