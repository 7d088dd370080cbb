package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a range is requested with both or
	// neither of an end date and a period count, or with a negative count.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("unparseable date")
	// ErrEmptyDataset is returned when a dataset contains no holiday rows.
	ErrEmptyDataset = errors.New("holiday dataset is empty")
)

// ParseError reports a date string that matches none of the accepted layouts.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Input)
}

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
