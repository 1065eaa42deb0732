package dirty

import "errors"

var (
	// ErrPanelNotShown is returned when the save button was clicked but the
	// save panel did not appear within the settle bound.
	ErrPanelNotShown = errors.New("save panel did not open after clicking save")

	// ErrPanelNotClosed is returned when the save panel stays open after the
	// commit button was clicked.
	ErrPanelNotClosed = errors.New("save panel still open after committing")

	// ErrUnquotableName is returned for entity names that contain both single
	// and double quotes.
	ErrUnquotableName = errors.New("entity name cannot be quoted for xpath")
)
