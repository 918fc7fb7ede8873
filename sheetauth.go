// Package sheetauth treats a Google spreadsheet as a user-account store. The
// sheet's first row is interpreted as a dynamic schema, every following row
// as an account record; a snapshot cache keeps reads cheap while every write
// goes straight to the sheet and invalidates the cache.
package sheetauth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"tideland.dev/go/slices"

	"github.com/cosmocode/sheetauth/storage"
	"github.com/cosmocode/sheetauth/storage/model"
)

// DefaultGroup is the group assigned to new accounts when none is given and
// no default is configured.
const DefaultGroup = "user"

// Directory exposes the identity-provider operations backed by the auth
// sheet: keyed lookup, creation, field update, deletion and filtered,
// paginated enumeration. It enforces login uniqueness and row-address
// consistency locally, since the sheet itself offers neither.
type Directory struct {
	gateway      model.TableGateway
	cache        *storage.Cache
	hasher       CredentialHasher
	audit        *AuditRecorder
	defaultGroup string
}

// Options configures a Directory.
type Options struct {
	// DefaultGroup is assigned to accounts created without groups.
	DefaultGroup string
	// Hasher replaces the argon2id credential hasher.
	Hasher CredentialHasher
}

// NewDirectory creates a Directory over the passed gateway and cache.
func NewDirectory(gateway model.TableGateway, cache *storage.Cache, opts Options) *Directory {
	if opts.DefaultGroup == "" {
		opts.DefaultGroup = DefaultGroup
	}
	if opts.Hasher == nil {
		opts.Hasher = Argon2idHasher{}
	}
	return &Directory{
		gateway:      gateway,
		cache:        cache,
		hasher:       opts.Hasher,
		audit:        NewAuditRecorder(gateway),
		defaultGroup: opts.DefaultGroup,
	}
}

// Lookup returns the record for the passed login, or a NotFoundError.
func (d *Directory) Lookup(ctx context.Context, login string) (*model.UserRecord, error) {
	snap, err := d.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	rec, ok := snap.Users[login]
	if !ok {
		return nil, model.NotFoundErrorFmt("user not found: %s", login)
	}
	return rec, nil
}

// Create appends a new account row. The login must not exist yet, the
// password is hashed before it leaves the process, and groups default to the
// configured default group. On success the cache is invalidated and a
// creation event is recorded.
func (d *Directory) Create(ctx context.Context, login, password, name, mail string, groups []string) error {
	if login == "" || password == "" || mail == "" {
		return errors.Errorf("login, password and mail are required")
	}
	snap, err := d.cache.Get(ctx, false)
	if err != nil {
		return err
	}
	if _, exists := snap.Users[login]; exists {
		return model.AlreadyExistsErrorFmt("user already exists: %s", login)
	}
	if len(groups) == 0 {
		groups = []string{d.defaultGroup}
	}
	hash, err := d.hasher.Hash(password)
	if err != nil {
		return err
	}
	rec := &model.UserRecord{
		Login:        login,
		PasswordHash: hash,
		Name:         name,
		Mail:         mail,
		Groups:       model.NormalizeGroups(groups),
	}
	if err := d.gateway.AppendRow(ctx, buildRow(rec, snap.Schema, time.Now())); err != nil {
		return err
	}
	d.cache.Invalidate()
	d.audit.Record(ctx, login, model.EventCreated)
	return nil
}

// Update applies the recognized field changes to the user's sheet row as one
// cell-update batch. The row address is resolved from a snapshot fetched in
// the same call, never from one cached across a prior write. On success the
// cache is invalidated and a modification event is recorded.
func (d *Directory) Update(ctx context.Context, login string, changes model.FieldChanges) error {
	if changes.IsZero() {
		return nil
	}
	snap, err := d.cache.Get(ctx, false)
	if err != nil {
		return err
	}
	rec, ok := snap.Users[login]
	if !ok {
		return model.NotFoundErrorFmt("user not found: %s", login)
	}
	var edits []model.CellEdit
	edit := func(column, value string) {
		col, ok := snap.Schema.Col(column)
		if !ok {
			return
		}
		edits = append(edits, model.CellEdit{Row: rec.SourceRow, Col: col, Value: value})
	}
	if changes.Password != nil {
		hash, err := d.hasher.Hash(*changes.Password)
		if err != nil {
			return err
		}
		edit(model.ColPass, hash)
	}
	if changes.Name != nil {
		edit(model.ColName, *changes.Name)
	}
	if changes.Mail != nil {
		edit(model.ColMail, *changes.Mail)
	}
	if changes.Groups != nil {
		edit(model.ColGrps, model.JoinGroups(model.NormalizeGroups(*changes.Groups)))
	}
	if len(edits) == 0 {
		return nil
	}
	if err := d.gateway.BatchUpdateCells(ctx, edits); err != nil {
		return err
	}
	d.cache.Invalidate()
	d.audit.Record(ctx, login, model.EventModified)
	return nil
}

// Delete removes the accounts for the passed logins in one structural batch
// deletion and returns how many rows were removed. Unknown logins are
// skipped; an empty input is a no-op that never contacts the sheet.
func (d *Directory) Delete(ctx context.Context, logins []string) (int, error) {
	if len(logins) == 0 {
		return 0, nil
	}
	snap, err := d.cache.Get(ctx, false)
	if err != nil {
		return 0, err
	}
	rows := make([]int, 0, len(logins))
	found := make([]string, 0, len(logins))
	seen := make(map[string]bool, len(logins))
	for _, login := range logins {
		// a repeated login must not put the same row into the batch twice:
		// the second structural deletion would hit whatever row shifted up
		if seen[login] {
			continue
		}
		seen[login] = true
		rec, ok := snap.Users[login]
		if !ok {
			continue
		}
		rows = append(rows, rec.SourceRow)
		found = append(found, login)
	}
	if unknown := slices.Subtract(logins, found); len(unknown) > 0 {
		log.WithField("logins", unknown).Debug("ignoring unknown logins in delete")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := d.gateway.BatchDeleteRows(ctx, rows); err != nil {
		return 0, err
	}
	d.cache.Invalidate()
	for _, login := range found {
		d.audit.Record(ctx, login, model.EventDeleted)
	}
	return len(rows), nil
}

// Enumerate returns the page [start, start+limit) of all records matching
// the filter, in ascending-login order. A limit of 0 means unbounded.
func (d *Directory) Enumerate(ctx context.Context, start, limit int, filter model.FilterSpec) ([]*model.UserRecord, error) {
	snap, err := d.cache.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	records := snap.Records()
	if len(filter) > 0 {
		filtered := make([]*model.UserRecord, 0, len(records))
		for _, rec := range records {
			if filter.Matches(rec) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	if start < 0 {
		start = 0
	}
	if start >= len(records) {
		return []*model.UserRecord{}, nil
	}
	end := len(records)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return records[start:end], nil
}

// VerifyCredential checks a login/secret pair against the stored hash. A
// missing user or a stored value that is not a valid hash count as no-match,
// not as errors. A successful verification records a login event.
func (d *Directory) VerifyCredential(ctx context.Context, login, secret string) (bool, error) {
	rec, err := d.Lookup(ctx, login)
	if err != nil {
		if _, notFound := errors.Cause(err).(model.NotFoundError); notFound {
			return false, nil
		}
		return false, err
	}
	ok, err := d.hasher.Verify(rec.PasswordHash, secret)
	if err != nil {
		log.WithError(err).WithField("login", login).Debug("stored credential hash is not verifiable")
		return false, nil
	}
	if ok {
		d.RecordLogin(ctx, login)
	}
	return ok, nil
}

// RecordLogin emits a login audit event. Failures are logged, never
// returned.
func (d *Directory) RecordLogin(ctx context.Context, login string) {
	d.audit.Record(ctx, login, model.EventLogin)
}

// ValidateSchema reports whether the sheet's header row covers all required
// columns; the result is cached with its own TTL.
func (d *Directory) ValidateSchema(ctx context.Context) (bool, error) {
	return d.cache.SchemaValid(ctx)
}

// InvalidateCache forces the next read to re-fetch the sheet.
func (d *Directory) InvalidateCache() {
	d.cache.Invalidate()
}

// buildRow serializes a new record into the current schema's column order.
// Fields the schema does not know are dropped; columns the record has no
// value for stay empty, except a `created` column, which receives the
// creation timestamp the stats sheet format uses.
func buildRow(rec *model.UserRecord, schema model.Schema, now time.Time) []string {
	row := make([]string, len(schema.Columns))
	for name, i := range schema.Index {
		switch name {
		case model.ColUser:
			row[i] = rec.Login
		case model.ColPass:
			row[i] = rec.PasswordHash
		case model.ColName:
			row[i] = rec.Name
		case model.ColMail:
			row[i] = rec.Mail
		case model.ColGrps:
			row[i] = model.JoinGroups(rec.Groups)
		case "created":
			row[i] = now.Format("2006/01/02 15:04")
		}
	}
	return row
}
