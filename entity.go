package neoviz

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// entityTag is the struct tag read by Store and Linker, e.g. `neo:"pk,property:userId"`.
const entityTag = "neo"

// entityMeta describes how a struct type maps onto a graph node.
type entityMeta struct {
	// Label is the node label, the struct's type name.
	Label string
	// PKField is the name of the struct field marked as the primary key.
	PKField string
	// PKProp is the node property holding the primary key.
	PKProp string
	// Fields maps struct field names to node property names.
	Fields map[string]string
}

var metaCache sync.Map // reflect.Type -> *entityMeta

// metaFor inspects typ (a struct or pointer to struct) and returns its node mapping.
// Results are cached per type.
func metaFor(typ reflect.Type) (*entityMeta, error) {
	if typ == nil {
		return nil, fmt.Errorf("entity type is nil")
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if cached, ok := metaCache.Load(typ); ok {
		return cached.(*entityMeta), nil
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("type %s is not a struct", typ.Name())
	}

	meta := &entityMeta{
		Label:  typ.Name(),
		Fields: make(map[string]string),
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup(entityTag)
		if !ok || tag == "" || tag == "-" {
			continue
		}

		pk, prop := false, ""
		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "pk":
				pk = true
			case strings.HasPrefix(part, "property:"):
				prop = strings.TrimPrefix(part, "property:")
			}
		}
		if prop == "" {
			return nil, fmt.Errorf("field %s.%s is missing the 'property' tag component", typ.Name(), field.Name)
		}
		if pk {
			if meta.PKField != "" {
				return nil, fmt.Errorf("struct %s declares more than one primary key", typ.Name())
			}
			meta.PKField, meta.PKProp = field.Name, prop
		}
		meta.Fields[field.Name] = prop
	}

	if meta.PKField == "" {
		return nil, fmt.Errorf("no primary key ('pk') tag defined for struct %s", typ.Name())
	}

	metaCache.Store(typ, meta)
	return meta, nil
}

// entityValue returns the struct value behind a non-nil pointer together with its mapping.
func entityValue(entity any) (reflect.Value, *entityMeta, error) {
	val := reflect.ValueOf(entity)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("entity must be a non-nil pointer")
	}
	meta, err := metaFor(val.Type())
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return val.Elem(), meta, nil
}

// assignProps copies node properties into the mapped fields of val. Properties that are
// missing or whose type cannot be converted to the field type are left untouched.
func assignProps(val reflect.Value, meta *entityMeta, props map[string]any) {
	for fieldName, prop := range meta.Fields {
		field := val.FieldByName(fieldName)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		raw, ok := props[prop]
		if !ok || raw == nil {
			continue
		}
		pv := reflect.ValueOf(raw)
		switch {
		case pv.Type().AssignableTo(field.Type()):
			field.Set(pv)
		case isNumeric(pv.Kind()) && isNumeric(field.Kind()):
			field.Set(pv.Convert(field.Type()))
		}
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
