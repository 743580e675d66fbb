package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeExtractor returns canned pages keyed by the file's byte content.
type fakeExtractor struct {
	pages map[string][]string
	errOn string
}

func (f *fakeExtractor) ExtractPages(data []byte) ([]string, error) {
	key := string(data)
	if key == f.errOn {
		return nil, errors.New("not a PDF")
	}
	return f.pages[key], nil
}

func TestLoadDocuments_HeaderSynthesis(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]string{
		"deck": {"isi halaman pertama", "isi halaman kedua"},
	}}

	records, err := LoadDocuments([]UploadedFile{{Name: "Intro.PDF", Data: []byte("deck")}}, extractor)
	if err != nil {
		t.Fatalf("LoadDocuments() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Filename != "intro.pdf" {
		t.Errorf("Filename = %q, want lower-cased intro.pdf", first.Filename)
	}
	if first.SlideNumber != 1 {
		t.Errorf("SlideNumber = %d, want 1", first.SlideNumber)
	}
	wantHeader := "Slide ke-1:\nSlide ke-1 dari dokumen 'intro.pdf':\n"
	if !strings.HasPrefix(first.Text, wantHeader) {
		t.Errorf("Text prefix = %q, want %q", first.Text[:min(len(first.Text), 60)], wantHeader)
	}
	if !strings.HasSuffix(first.Text, "isi halaman pertama") {
		t.Errorf("Text must end with the extracted page content, got %q", first.Text)
	}
}

func TestLoadDocuments_Ordering(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]string{
		"a": {"a1", "a2", "a3"},
		"b": {"b1"},
	}}

	records, err := LoadDocuments([]UploadedFile{
		{Name: "first.pdf", Data: []byte("a")},
		{Name: "second.pdf", Data: []byte("b")},
	}, extractor)
	if err != nil {
		t.Fatalf("LoadDocuments() error = %v", err)
	}

	want := []struct {
		filename string
		slide    int
	}{
		{"first.pdf", 1}, {"first.pdf", 2}, {"first.pdf", 3}, {"second.pdf", 1},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, w := range want {
		if records[i].Filename != w.filename || records[i].SlideNumber != w.slide {
			t.Errorf("record %d = (%s, %d), want (%s, %d)",
				i, records[i].Filename, records[i].SlideNumber, w.filename, w.slide)
		}
	}
}

func TestLoadDocuments_SlideNumbersStrictlyIncreasingPerFile(t *testing.T) {
	pages := make([]string, 12)
	for i := range pages {
		pages[i] = fmt.Sprintf("halaman %d", i+1)
	}
	extractor := &fakeExtractor{pages: map[string][]string{"deck": pages}}

	records, err := LoadDocuments([]UploadedFile{{Name: "intro.pdf", Data: []byte("deck")}}, extractor)
	if err != nil {
		t.Fatalf("LoadDocuments() error = %v", err)
	}
	for i, rec := range records {
		if rec.SlideNumber != i+1 {
			t.Errorf("record %d SlideNumber = %d, want %d", i, rec.SlideNumber, i+1)
		}
	}
}

func TestLoadDocuments_ExtractionFailureAbortsBatch(t *testing.T) {
	extractor := &fakeExtractor{
		pages: map[string][]string{"good": {"p1"}},
		errOn: "bad",
	}

	records, err := LoadDocuments([]UploadedFile{
		{Name: "good.pdf", Data: []byte("good")},
		{Name: "bad.pdf", Data: []byte("bad")},
	}, extractor)

	if err == nil {
		t.Fatal("LoadDocuments() with a bad file should fail the whole batch")
	}
	if records != nil {
		t.Error("no partial page set may be returned on extraction failure")
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
	if extractionErr.Filename != "bad.pdf" {
		t.Errorf("ExtractionError.Filename = %q, want bad.pdf", extractionErr.Filename)
	}
}
