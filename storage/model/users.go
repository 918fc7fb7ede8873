package model

import (
	"strings"

	arrays "github.com/adam-hanna/arrayOperations"
)

// UserRecord is one decoded account row of the auth sheet.
type UserRecord struct {
	// Login is the unique account name, taken from the `user` column.
	Login string `json:"user" msgpack:"user" structs:"user"`
	// PasswordHash stores a PHC-formatted argon2id hash of the user's password
	PasswordHash string `json:"-" msgpack:"pass" structs:"-"`
	// Name is the display name; defaults to the empty string.
	Name string `json:"name" msgpack:"name" structs:"name"`
	// Mail is the contact address.
	Mail string `json:"mail" msgpack:"mail" structs:"mail"`
	// Groups is the decoded, deduplicated group list from the `grps` column.
	Groups []string `json:"grps" msgpack:"grps" structs:"grps"`
	// SourceRow is the 1-based physical sheet row backing this record. It is
	// only valid for the snapshot it was decoded into: any structural row
	// deletion invalidates it.
	SourceRow int `json:"row" msgpack:"row" structs:"-"`
}

// DecodeRow converts one raw sheet row into a UserRecord using the passed
// schema. Rows where any of the user, pass or mail cells is empty are
// placeholder or malformed rows; they are skipped, not errors, so the second
// return value reports whether a record was produced.
func DecodeRow(row []string, schema Schema, sourceRow int) (*UserRecord, bool) {
	cell := func(name string) string {
		i, ok := schema.Index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	login := cell(ColUser)
	pass := cell(ColPass)
	mail := cell(ColMail)
	if login == "" || pass == "" || mail == "" {
		return nil, false
	}
	return &UserRecord{
		Login:        login,
		PasswordHash: pass,
		Name:         cell(ColName),
		Mail:         mail,
		Groups:       SplitGroups(cell(ColGrps)),
		SourceRow:    sourceRow,
	}, true
}

// InGroup reports whether the record carries the passed group tag.
func (u *UserRecord) InGroup(group string) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// SplitGroups decodes a comma-separated grps cell into a trimmed,
// deduplicated group list. An empty cell yields an empty list.
func SplitGroups(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return []string{}
	}
	return NormalizeGroups(strings.Split(cell, ","))
}

// JoinGroups is the inverse of SplitGroups; it serializes a group list back
// into the comma-joined cell format.
func JoinGroups(groups []string) string {
	return strings.Join(groups, ",")
}

// NormalizeGroups trims all entries, drops empty ones and removes duplicates
// while keeping first-occurrence order.
func NormalizeGroups(groups []string) []string {
	trimmed := make([]string, 0, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			trimmed = append(trimmed, g)
		}
	}
	return arrays.Distinct(trimmed)
}

// FieldChanges enumerates the recognized account field mutations for an
// update. Nil fields are left untouched; a non-nil Password is hashed before
// it reaches the sheet.
type FieldChanges struct {
	Password *string
	Name     *string
	Mail     *string
	Groups   *[]string
}

// IsZero reports whether no change was requested.
func (c FieldChanges) IsZero() bool {
	return c.Password == nil && c.Name == nil && c.Mail == nil && c.Groups == nil
}
