package bookshelf

import (
	"strconv"
	"strings"
)

// ParseTag parses a `bookshelf:"..."` struct tag value into FieldSchema attributes.
// Supported: unique, index, required, enum=a|b|c, min=N, max=N.
func ParseTag(tag string) FieldSchema {
	var fs FieldSchema
	if tag == "" {
		return fs
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if k, v, ok := strings.Cut(part, "="); ok {
			switch k {
			case "enum":
				fs.Enum = strings.Split(v, "|")
			case "min":
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					fs.Min = &n
				}
			case "max":
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					fs.Max = &n
				}
			}
			continue
		}

		switch part {
		case "unique":
			fs.Unique = true
		case "index":
			fs.Index = true
		case "required":
			fs.Required = true
		}
	}

	return fs
}

// ParseBSONTag extracts the BSON field name from a `bson:"..."` struct tag.
// Returns the field name and whether the field should be omitted when empty.
func ParseBSONTag(tag string) (name string, omitempty bool) {
	if tag == "" {
		return "", false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty
}
