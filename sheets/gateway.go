// Package sheets implements the remote table gateway over the Google Sheets
// API. It is the only place that talks to the spreadsheet service; everything
// above it works on decoded snapshots.
package sheets

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/cosmocode/sheetauth/storage/model"
)

// Gateway performs all remote spreadsheet operations: full-range read,
// single-row append, batch cell update and batch structural row deletion.
// It is stateless beyond the authorized client and the target configuration.
type Gateway struct {
	service *gsheets.Service
	cfg     Config
	// initErr is set when the client could not be constructed; every call
	// then fails fast with it instead of crashing the host.
	initErr error
}

// NewGateway builds a gateway for the configured spreadsheet. A credential or
// handshake failure is deliberately not fatal here: the gateway is still
// returned and every subsequent call reports an AuthenticationError, which
// the caller must surface without crashing.
func NewGateway(ctx context.Context, cfg Config) *Gateway {
	g := &Gateway{cfg: cfg}
	if cfg.CredentialsFile == "" {
		g.initErr = model.ConfigurationError("no sheets credentials file configured")
		return g
	}
	service, err := gsheets.NewService(
		ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		log.WithError(err).Error("could not initialize sheets client")
		g.initErr = model.AuthenticationErrorFmt("sheets client handshake failed: %s", err)
		return g
	}
	g.service = service
	return g
}

func (g *Gateway) ready() error {
	if g.initErr != nil {
		return g.initErr
	}
	if g.cfg.SpreadsheetID == "" {
		return model.ConfigurationError("no spreadsheet id configured")
	}
	return nil
}

// ReadAll returns every row of the auth sheet, including the header row.
func (g *Gateway) ReadAll(ctx context.Context) ([][]string, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	resp, err := g.service.Spreadsheets.Values.
		Get(g.cfg.SpreadsheetID, fmt.Sprintf("%s!A1:Z", g.cfg.SheetName)).
		Context(ctx).Do()
	if err != nil {
		return nil, readError(err)
	}
	return stringRows(resp.Values), nil
}

// ReadHeader returns just the header row, for schema validation without a
// full table read.
func (g *Gateway) ReadHeader(ctx context.Context) ([]string, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	resp, err := g.service.Spreadsheets.Values.
		Get(g.cfg.SpreadsheetID, fmt.Sprintf("%s!1:1", g.cfg.SheetName)).
		Context(ctx).Do()
	if err != nil {
		return nil, readError(err)
	}
	rows := stringRows(resp.Values)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// AppendRow appends one row after the existing data, raw and unformatted.
func (g *Gateway) AppendRow(ctx context.Context, cells []string) error {
	if err := g.ready(); err != nil {
		return err
	}
	body := &gsheets.ValueRange{Values: [][]any{anyRow(cells)}}
	_, err := g.service.Spreadsheets.Values.
		Append(g.cfg.SpreadsheetID, fmt.Sprintf("%s!A2", g.cfg.SheetName), body).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return writeError("append failed", err)
	}
	return nil
}

// BatchUpdateCells applies all edits in one batch request, one single-cell
// range per edit. On error none of the cells may be assumed updated.
func (g *Gateway) BatchUpdateCells(ctx context.Context, edits []model.CellEdit) error {
	if err := g.ready(); err != nil {
		return err
	}
	if len(edits) == 0 {
		return nil
	}
	data := make([]*gsheets.ValueRange, len(edits))
	for i, e := range edits {
		data[i] = &gsheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", g.cfg.SheetName, ColumnLetter(e.Col), e.Row),
			Values: [][]any{{e.Value}},
		}
	}
	req := &gsheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err := g.service.Spreadsheets.Values.
		BatchUpdate(g.cfg.SpreadsheetID, req).
		Context(ctx).Do()
	if err != nil {
		return writeError("cell update failed", err)
	}
	return nil
}

// BatchDeleteRows structurally deletes the passed 1-based rows in a single
// batch. Rows are deleted from the highest index down, so earlier deletions
// never shift the row numbers of later ones within the batch.
func (g *Gateway) BatchDeleteRows(ctx context.Context, rows []int) error {
	if err := g.ready(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	sorted := descendingRows(rows)
	requests := make([]*gsheets.Request, len(sorted))
	for i, row := range sorted {
		requests[i] = &gsheets.Request{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    g.cfg.SheetGID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}
	}
	_, err := g.service.Spreadsheets.
		BatchUpdate(g.cfg.SpreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return writeError("row deletion failed", err)
	}
	return nil
}

// AppendAudit appends an account event to the stats sheet. Auditing is a
// no-op when no stats sheet is configured.
func (g *Gateway) AppendAudit(ctx context.Context, ev model.AuditEvent) error {
	if g.cfg.StatsSheetName == "" {
		return nil
	}
	if err := g.ready(); err != nil {
		return err
	}
	body := &gsheets.ValueRange{Values: [][]any{anyRow(ev.Row())}}
	_, err := g.service.Spreadsheets.Values.
		Append(g.cfg.SpreadsheetID, fmt.Sprintf("%s!A2", g.cfg.StatsSheetName), body).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return writeError("audit append failed", err)
	}
	return nil
}

// descendingRows orders row numbers from the highest down, the only order in
// which a deletion batch leaves the remaining row numbers intact. Duplicate
// row numbers are dropped: deleting the same index twice would remove the row
// that shifted up into it.
func descendingRows(rows []int) []int {
	sorted := make([]int, len(rows))
	copy(sorted, rows)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	unique := make([]int, 0, len(sorted))
	for _, row := range sorted {
		if n := len(unique); n > 0 && unique[n-1] == row {
			continue
		}
		unique = append(unique, row)
	}
	return unique
}

// ColumnLetter maps a zero-based column index to its sheet column letter.
// The auth sheet is addressed within A:Z, so indexes follow a 26-letter
// cycle.
func ColumnLetter(col int) string {
	return string(rune('A' + col%26))
}

// stringRows flattens the API's untyped cell values into strings.
func stringRows(values [][]any) [][]string {
	rows := make([][]string, len(values))
	for i, raw := range values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			if s, ok := cell.(string); ok {
				row[j] = s
			} else {
				row[j] = fmt.Sprint(cell)
			}
		}
		rows[i] = row
	}
	return rows
}

func anyRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// readError classifies a failed read call. Auth rejections keep their
// fail-fast character; everything else is a transient remote failure.
func readError(err error) error {
	if gerr, ok := err.(*googleapi.Error); ok && (gerr.Code == 401 || gerr.Code == 403) {
		return model.AuthenticationErrorFmt("sheets request rejected: %s", gerr.Message)
	}
	return model.RemoteUnavailableErrorFmt("sheets read failed: %s", err)
}

func writeError(op string, err error) error {
	if gerr, ok := err.(*googleapi.Error); ok && (gerr.Code == 401 || gerr.Code == 403) {
		return model.AuthenticationErrorFmt("sheets request rejected: %s", gerr.Message)
	}
	return model.RemoteWriteErrorFmt("sheets %s: %s", op, err)
}
