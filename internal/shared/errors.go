package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig     = fmt.Errorf("invalid configuration")
	ErrUnsupportedDriver = fmt.Errorf("unsupported database driver")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Input file errors
	ErrEmptyFile       = fmt.Errorf("file contains no records")
	ErrMalformedRecord = fmt.Errorf("malformed JSON record")

	// Load errors
	ErrInvalidRecord = fmt.Errorf("invalid record")
	ErrUnknownTable  = fmt.Errorf("no insert statement for table")
)
