package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/importer/crdeal"
)

type Service struct {
	crdealImporter Importer
}

func NewService() *Service {
	return &Service{
		crdealImporter: crdeal.NewParser(),
	}
}

// Import extracts one document. Any parser failure comes back as a
// *DocumentError tied to the client.
func (s *Service) Import(format Format, doc Document, r io.Reader) (*deal.Extraction, error) {
	var importer Importer

	switch format {
	case FormatCrdeal:
		importer = s.crdealImporter
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	ext, err := importer.Parse(doc.ClientID, r)
	if err != nil {
		if !errors.Is(err, ErrMalformedDocument) {
			err = fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}

		return nil, &DocumentError{ClientID: doc.ClientID, Source: doc.Name(), Err: err}
	}

	ext.Source = doc.Name()
	for i := range ext.Records {
		ext.Records[i].Source = ext.Source
	}

	return ext, nil
}
