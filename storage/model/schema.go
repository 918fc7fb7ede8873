package model

import (
	"strings"
)

// Column names every auth sheet must provide in its header row.
const (
	ColUser = "user"
	ColPass = "pass"
	ColName = "name"
	ColMail = "mail"
	ColGrps = "grps"
)

// RequiredColumns lists the column names that must be present exactly once in
// the header row. Extra columns are tolerated and passed through untouched.
var RequiredColumns = []string{ColUser, ColPass, ColName, ColMail, ColGrps}

// Schema is the dynamic column layout of the auth sheet, rebuilt from the
// header row on every full read and immutable in between.
type Schema struct {
	// Columns holds the ordered column names as read from row 1.
	Columns []string `json:"columns"`
	// Index maps a column name to its zero-based index.
	Index map[string]int `json:"index"`
}

// ParseSchema interprets the passed header row as a column name to column
// index mapping. It returns a SchemaError when a required column is missing
// or appears more than once. For extra columns the first occurrence wins.
func ParseSchema(header []string) (Schema, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := index[name]; seen {
			if isRequiredColumn(name) {
				return Schema{}, SchemaErrorFmt("duplicate column %q in header row", name)
			}
			continue
		}
		index[name] = i
	}
	for _, req := range RequiredColumns {
		if _, ok := index[req]; !ok {
			return Schema{}, SchemaErrorFmt("required column %q missing from header row", req)
		}
	}
	return Schema{Columns: header, Index: index}, nil
}

// Col returns the zero-based index of the named column and whether the column
// exists in this schema.
func (s Schema) Col(name string) (int, bool) {
	i, ok := s.Index[name]
	return i, ok
}

func isRequiredColumn(name string) bool {
	for _, req := range RequiredColumns {
		if name == req {
			return true
		}
	}
	return false
}
