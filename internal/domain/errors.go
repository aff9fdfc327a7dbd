package domain

import "errors"

var (
	// ErrFileAccess means the input file is missing or unreadable. Fatal at startup.
	ErrFileAccess = errors.New("input file not accessible")

	// ErrParse means the input is not valid delimited tabular data. Fatal at startup.
	ErrParse = errors.New("malformed tabular data")

	// ErrGeometry means a single record's geometry could not be parsed or
	// reprojected. The record is dropped; the error never leaves the pipeline.
	ErrGeometry = errors.New("invalid geometry")
)
