package export

import "errors"

var (
	// ErrNothingToExport is returned when there are no representatives to write.
	ErrNothingToExport = errors.New("no sales data to export")
	// ErrUnknownFormat is returned for an export format other than csv or json.
	ErrUnknownFormat = errors.New("unknown export format")
)
