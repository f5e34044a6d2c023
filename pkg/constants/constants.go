// Package constants provides shared constants used throughout the specgate
// codebase: scan windows, fixed workbook coordinates, default paths and
// file permissions.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Scan windows bound how far into a sheet the gate looks. Content beyond
// them is reported as truncated, never silently read.
const (
	// ScanMaxRow is the last row of the per-screen identifier scan region
	ScanMaxRow = 220

	// ScanMaxCol is the last column of the per-screen identifier scan region
	ScanMaxCol = 8

	// SectionWindow is the last row searched for required section headings
	SectionWindow = 220

	// ConstraintWindow is the last row searched for the constraints table
	ConstraintWindow = 260

	// ErrorCatalogWindow is the last row of the error catalog sheet that is read
	ErrorCatalogWindow = 400

	// ErrorCatalogCols is the number of leading columns scanned for error codes
	ErrorCatalogCols = 3

	// CodeCatalogWindow is the last row of the canonical code sheet that is read
	CodeCatalogWindow = 2000

	// TraceFirstRow is the first data row of the traceability matrix
	TraceFirstRow = 4

	// TraceWindow is the last row of the traceability matrix that is read
	TraceWindow = 3000

	// TOCHeaderRow is the header row of the table of contents
	TOCHeaderRow = 3

	// TOCFirstRow is the first data row of the table of contents
	TOCFirstRow = 4

	// TOCWindow is the last row of the table of contents that is read
	TOCWindow = 1200

	// LedgerWindow is the last row of the assumptions ledger that is read
	LedgerWindow = 5000

	// LastUsedWindow bounds the search for the last used row when appending
	LastUsedWindow = 2000
)

// Limit constants
const (
	// MaxRangeSpan is the widest compressed identifier range that is expanded
	MaxRangeSpan = 30

	// MaxExamples is the default number of examples printed per failing check
	MaxExamples = 10

	// MaxRisks is the number of risk lines in the console summary
	MaxRisks = 5
)

// WatchDebounce is how long the watch command waits for writes to settle.
const WatchDebounce = 750 * time.Millisecond

// Default paths, relative to the document container root.
const (
	// DefaultWorkbook is the glob that locates the UI/UX workbook
	DefaultWorkbook = "docs/uiux/CS_RAG_UI_UX_*.xlsx"

	// DefaultRequirements is the requirements registry CSV
	DefaultRequirements = "docs/references/CS AI Chatbot_Requirements Statement.csv"

	// DefaultFeatures is the feature registry CSV
	DefaultFeatures = "docs/references/Summary of key features.csv"

	// DefaultAPICatalog is the glob that locates the API catalog workbook
	DefaultAPICatalog = "docs/references/google_ready_api_spec_*.xlsx"

	// DefaultDBCatalog is the DB table catalog workbook
	DefaultDBCatalog = "docs/references/CS_AI_CHATBOT_DB.xlsx"

	// DefaultReportPath is the gate report JSON
	DefaultReportPath = "docs/uiux/reports/xlsx_gate_report.json"

	// DefaultSummaryPath is the plain-text gate summary
	DefaultSummaryPath = "docs/uiux/reports/xlsx_gate_summary.txt"

	// DefaultChangesPath is the repair change log JSON
	DefaultChangesPath = "docs/uiux/reports/spec_sync_changes.json"

	// DefaultConfigName is the config file name (without extension)
	DefaultConfigName = ".specgate"
)

// PlaceholderPrefix starts every value the repair engine inserts without evidence.
const PlaceholderPrefix = "TBD"
