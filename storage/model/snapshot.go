package model

import (
	"sort"
	"time"
)

// DirectorySnapshot is an immutable view of all decoded user records plus the
// schema used to build them. A snapshot is always replaced wholesale on
// refresh and never mutated in place, so a caller holding one sees a
// coherent, possibly stale, state.
type DirectorySnapshot struct {
	// Schema is the column layout the records were decoded with.
	Schema Schema `json:"schema" msgpack:"schema"`
	// Users maps a login to its record.
	Users map[string]*UserRecord `json:"users" msgpack:"users"`
	// CreatedAt is the freshness token used for staleness decisions.
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// BuildSnapshot runs the schema mapper and the record decoder over a full
// sheet read. rows must include the header row; the first data row is
// physical sheet row 2. Malformed rows are skipped per DecodeRow and never
// abort the build. When a login occurs twice the later row wins, matching the
// sheet's append-only write pattern.
func BuildSnapshot(rows [][]string, now time.Time) (*DirectorySnapshot, error) {
	if len(rows) == 0 {
		return nil, SchemaError("sheet is empty, header row missing")
	}
	schema, err := ParseSchema(rows[0])
	if err != nil {
		return nil, err
	}
	users := make(map[string]*UserRecord, len(rows)-1)
	for i, row := range rows[1:] {
		rec, ok := DecodeRow(row, schema, i+2)
		if !ok {
			continue
		}
		users[rec.Login] = rec
	}
	return &DirectorySnapshot{Schema: schema, Users: users, CreatedAt: now}, nil
}

// Logins returns all logins in ascending order.
func (s *DirectorySnapshot) Logins() []string {
	logins := make([]string, 0, len(s.Users))
	for login := range s.Users {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}

// Records returns all records in ascending-login order, the canonical
// enumeration order for deterministic pagination.
func (s *DirectorySnapshot) Records() []*UserRecord {
	logins := s.Logins()
	records := make([]*UserRecord, len(logins))
	for i, login := range logins {
		records[i] = s.Users[login]
	}
	return records
}

// Age returns how long ago the snapshot was built.
func (s *DirectorySnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}
