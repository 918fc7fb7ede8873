package model

import (
	"testing"
)

var filterRec = &UserRecord{
	Login:  "hans",
	Name:   "Hans Wurst",
	Mail:   "hans@example.com",
	Groups: []string{"user", "Admin"},
}

// TestFilterSpecEmpty tests that an empty filter matches everything
func TestFilterSpecEmpty(t *testing.T) {
	if !(FilterSpec{}).Matches(filterRec) {
		t.Error("Empty filter must match every record")
	}
	if !(FilterSpec(nil)).Matches(filterRec) {
		t.Error("Nil filter must match every record")
	}
}

// TestFilterSpecFields tests matching on the string columns
func TestFilterSpecFields(t *testing.T) {
	tests := []struct {
		filter FilterSpec
		want   bool
	}{
		{FilterSpec{"user": "hans"}, true},
		{FilterSpec{"user": "HANS"}, true}, // case insensitive
		{FilterSpec{"user": "^h.ns$"}, true},
		{FilterSpec{"user": "erika"}, false},
		{FilterSpec{"name": "wurst"}, true},
		{FilterSpec{"mail": "example\\.com$"}, true},
		{FilterSpec{"user": "hans", "mail": "hans@"}, true},
		{FilterSpec{"user": "hans", "mail": "erika@"}, false}, // all patterns must match
	}
	for _, tt := range tests {
		if got := tt.filter.Matches(filterRec); got != tt.want {
			t.Errorf("Matches(%v) = %v, want %v", tt.filter, got, tt.want)
		}
	}
}

// TestFilterSpecGroups tests that a grps pattern matches when any single
// group matches
func TestFilterSpecGroups(t *testing.T) {
	if !(FilterSpec{"grps": "admin"}).Matches(filterRec) {
		t.Error("Expected the admin pattern to match one of the groups")
	}
	if (FilterSpec{"grps": "staff"}).Matches(filterRec) {
		t.Error("Expected the staff pattern to match no group")
	}
}

// TestFilterSpecInvalidPattern tests the literal substring fallback for
// patterns that do not compile as regular expressions
func TestFilterSpecInvalidPattern(t *testing.T) {
	rec := &UserRecord{Login: "weird[user", Mail: "x@example.com"}
	if !(FilterSpec{"user": "weird[user"}).Matches(rec) {
		t.Error("Expected the broken pattern to fall back to substring matching")
	}
}

// TestFilterSpecUnknownColumn tests that a pattern on an unknown column
// matches nothing
func TestFilterSpecUnknownColumn(t *testing.T) {
	if (FilterSpec{"shoesize": "42"}).Matches(filterRec) {
		t.Error("A pattern on an unknown column must not match")
	}
}
