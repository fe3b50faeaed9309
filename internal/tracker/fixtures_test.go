package tracker

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// makeDocx builds a minimal .docx with the given body paragraphs and table
// cells.
func makeDocx(t *testing.T, paragraphs, cells []string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>", p)
	}
	if len(cells) > 0 {
		body.WriteString("<w:tbl><w:tr>")
		for _, c := range cells {
			fmt.Fprintf(&body, "<w:tc><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:tc>", c)
		}
		body.WriteString("</w:tr></w:tbl>")
	}

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`

	return makeZip(t, map[string][]byte{
		"word/document.xml": []byte(documentXML),
	})
}

// makeZip builds a zip archive from a map of entry name to content.
func makeZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", name, err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

// crRow is one data row of a CR pack list workbook.
type crRow struct {
	rpNumber string
	wgTdoc   string
	decision string
	spec     string
}

// makeCRWorkbook builds an .xlsx with a CR_Packs_List sheet in the layout
// the 3GPP meeting workbooks use.
func makeCRWorkbook(t *testing.T, rows []crRow) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()
	if _, err := wb.NewSheet(crPackSheet); err != nil {
		t.Fatalf("failed to create sheet: %v", err)
	}

	header := []any{colRPNumber, colWGTdoc, "Title", colDecision, colSpec}
	if err := wb.SetSheetRow(crPackSheet, "A1", &header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for i, row := range rows {
		values := []any{row.rpNumber, row.wgTdoc, "some change request", row.decision, row.spec}
		axis := fmt.Sprintf("A%d", i+2)
		if err := wb.SetSheetRow(crPackSheet, axis, &values); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return buf.Bytes()
}
