package internal

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type base struct {
	ID bson.ObjectID
}

type book struct {
	base
	Title  string
	Tags   []string
	Extra  map[string]*bson.ObjectID
	hidden int
}

func TestStructFields_FlattensEmbedded(t *testing.T) {
	fields := StructFields(reflect.TypeOf(&book{}))
	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	want := []string{"Title", "Tags", "Extra"}
	// base is unexported, so its fields are not promoted as exported fields
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}

	if StructFields(reflect.TypeOf(42)) != nil {
		t.Fatal("expected nil for non-struct")
	}
}

type Base struct {
	ID bson.ObjectID
}

type exported struct {
	Base
	Title string
}

func TestStructFields_ExportedEmbedded(t *testing.T) {
	fields := StructFields(reflect.TypeOf(exported{}))
	if len(fields) != 2 || fields[0].Name != "ID" || fields[1].Name != "Title" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeOf(""), "string"},
		{reflect.TypeOf(bson.ObjectID{}), "bson.ObjectID"},
		{reflect.TypeOf([]bson.ObjectID{}), "[]bson.ObjectID"},
		{reflect.TypeOf(&book{}), "*internal.book"},
		{reflect.TypeOf(map[string]*bson.ObjectID{}), "map[string]*bson.ObjectID"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.typ); got != tt.want {
			t.Errorf("TypeName(%v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
