package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
)

type Format string

const (
	FormatCrdeal Format = "crdeal"
)

// ErrMalformedDocument marks a document that cannot be read at all.
var ErrMalformedDocument = errors.New("malformed document")

// Importer extracts the flattened deal/period records of one client document.
type Importer interface {
	Parse(clientID string, r io.Reader) (*deal.Extraction, error)
}

// DocumentError reports a document-level failure for a single client.
// It never affects other documents of the same run.
type DocumentError struct {
	ClientID string
	Source   string
	Err      error
}

func (e *DocumentError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("client %s: %v", e.ClientID, e.Err)
	}

	return fmt.Sprintf("client %s (%s): %v", e.ClientID, e.Source, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
