package bookshelf

// FieldSchema describes a single field parsed from struct tags.
type FieldSchema struct {
	Name     string   // Go field name
	BSONName string   // bson tag name
	Type     string   // Go type as string
	Required bool     // field must be non-zero
	Unique   bool     // unique single-field index
	Index    bool     // single-field ascending index
	Enum     []string // allowed values
	Min      *float64 // minimum value or string length
	Max      *float64 // maximum value or string length
}

// Schema is the parsed representation of a model struct.
type Schema struct {
	ModelName       string          // Go struct name
	Collection      string          // MongoDB collection name
	Fields          []FieldSchema   // parsed fields
	CompoundIndexes []CompoundIndex // from Indexes() method
}

// HasField returns true if the schema contains a field with the given BSON name.
func (s *Schema) HasField(bsonName string) bool {
	return s.GetField(bsonName) != nil
}

// GetField returns the FieldSchema for a given BSON name, or nil if not found.
func (s *Schema) GetField(bsonName string) *FieldSchema {
	for i := range s.Fields {
		if s.Fields[i].BSONName == bsonName {
			return &s.Fields[i]
		}
	}
	return nil
}

// DeclaredIndexes returns every index the schema asks for: single-field
// indexes from tags first, then compound indexes in declaration order.
func (s *Schema) DeclaredIndexes() []CompoundIndex {
	var out []CompoundIndex
	for _, f := range s.Fields {
		switch {
		case f.Unique:
			out = append(out, NewUniqueIndex(Asc(f.BSONName)))
		case f.Index:
			out = append(out, NewIndex(Asc(f.BSONName)))
		}
	}
	return append(out, s.CompoundIndexes...)
}

// Indexable is implemented by models that declare compound indexes.
type Indexable interface {
	Indexes() []CompoundIndex
}
