package tracker

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDocumentNotFound is returned when an RP archive does not contain the
// requested working-group document.
var ErrDocumentNotFound = errors.New("document not found in archive")

// ExtractR4Document finds the .docx for the given R4 document inside an RP
// zip archive and returns its contents. Archives sometimes nest the document
// inside an inner zip, so those are searched too. The R4 name is matched as
// a case-insensitive substring of the entry name, which covers entries like
// "38101-1_CR2917_(Rel-19)_R4-2509864_BasedOnCatFRev.docx".
func ExtractR4Document(archive []byte, r4Document string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("not a valid zip archive: %w", err)
	}

	needle := strings.ToLower(r4Document)

	if data, ok := findDocx(reader, needle); ok {
		return data, nil
	}

	// Fall back to inner zip files.
	for _, f := range reader.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".zip") {
			continue
		}
		inner, err := readZipEntry(f)
		if err != nil {
			continue
		}
		innerReader, err := zip.NewReader(bytes.NewReader(inner), int64(len(inner)))
		if err != nil {
			continue
		}
		if data, ok := findDocx(innerReader, needle); ok {
			return data, nil
		}
	}

	return nil, ErrDocumentNotFound
}

func findDocx(reader *zip.Reader, needle string) ([]byte, bool) {
	for _, f := range reader.File {
		name := strings.ToLower(f.Name)
		if !strings.HasSuffix(name, ".docx") || !strings.Contains(name, needle) {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			continue
		}
		return data, true
	}
	return nil, false
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
