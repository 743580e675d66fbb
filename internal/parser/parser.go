package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"slide-rag/internal/models"
)

// UploadedFile is one uploaded document: original filename plus raw bytes.
type UploadedFile struct {
	Name string
	Data []byte
}

// PageExtractor produces one plain-text block per physical page, in
// reading order. The production implementation is the PDF extractor;
// tests substitute their own.
type PageExtractor interface {
	ExtractPages(data []byte) ([]string, error)
}

// ExtractionError reports a file that could not be parsed.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %q: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// LoadDocuments turns uploaded files into the ordered PageRecord sequence:
// files in input order, pages within a file in original order, slide
// numbers 1-based per file. Each page text is prefixed with a two-line
// header naming the slide number and the lower-cased filename, so slide
// identity is recoverable from text content alone after chunking.
//
// A file that fails extraction aborts the whole batch: no partial page
// set is ever returned.
func LoadDocuments(files []UploadedFile, extractor PageExtractor) ([]models.PageRecord, error) {
	if extractor == nil {
		return nil, errors.New("parser: nil extractor")
	}

	var records []models.PageRecord
	for _, f := range files {
		pages, err := extractor.ExtractPages(f.Data)
		if err != nil {
			return nil, &ExtractionError{Filename: f.Name, Err: err}
		}

		filename := strings.ToLower(f.Name)
		for i, pageText := range pages {
			slideNum := i + 1
			records = append(records, models.PageRecord{
				Text:        fmt.Sprintf(models.SlideHeaderTemplate, slideNum, slideNum, filename, pageText),
				SlideNumber: slideNum,
				Filename:    filename,
			})
			log.Debug().Str("filename", filename).Int("slide", slideNum).Msg("Loaded slide")
		}
	}
	return records, nil
}
