// Package internal holds reflection helpers shared by the bookshelf registry.
package internal

import (
	"reflect"
	"strings"
)

// StructFields returns the exported fields of a struct type. Anonymous
// (embedded) struct fields are flattened, matching how the bson codec inlines
// an embedded Model.
func StructFields(t reflect.Type) []reflect.StructField {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	fields := make([]reflect.StructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && indirect(f.Type).Kind() == reflect.Struct {
			fields = append(fields, StructFields(f.Type)...)
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// TypeName renders t the way it would be written in source with only the
// last package path element, e.g. "[]bson.ObjectID" or "*models.Book".
func TypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	}

	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	pkg := t.PkgPath()
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		pkg = pkg[i+1:]
	}
	return pkg + "." + t.Name()
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
