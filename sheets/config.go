package sheets

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"
)

// Config holds the connection settings for the auth spreadsheet under the
// `sheets` key.
//
// YAML example:
//
//	sheets:
//	  spreadsheet_id: 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms
//	  sheet_name: users
//	  stats_sheet_name: stats
//	  sheet_gid: 0
//	  credentials_file: /etc/sheetauth/credentials.json
type Config struct {
	// SpreadsheetID identifies the spreadsheet holding the auth sheet.
	SpreadsheetID string `yaml:"spreadsheet_id"`
	// SheetName is the tab holding the account table; row 1 is the header.
	SheetName string `yaml:"sheet_name"`
	// StatsSheetName is the tab audit events are appended to; auditing is
	// disabled when empty.
	StatsSheetName string `yaml:"stats_sheet_name"`
	// SheetGID is the numeric grid id of the auth sheet tab, needed for
	// structural row deletion. Defaults to 0, the first tab.
	SheetGID int64 `yaml:"sheet_gid"`
	// CredentialsFile is the Google service account credentials file.
	CredentialsFile string `yaml:"credentials_file"`
}

// Validate checks the configuration and fills defaults. A missing
// spreadsheet id is not flagged here: it surfaces as a ConfigurationError on
// the first gateway call, so a host can still construct the service and
// report the problem gracefully.
func (c *Config) Validate() error {
	if c.SheetName == "" {
		c.SheetName = "users"
	}
	if c.CredentialsFile != "" && !fileutils.FileExists(c.CredentialsFile) {
		return errors.Errorf("sheets: credentials file '%s' does not exist", c.CredentialsFile)
	}
	return nil
}
