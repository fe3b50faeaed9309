package tracker

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// crPackSheet is the sheet inside a meeting's TDoc workbook that lists CR
// packs and their per-CR decisions.
const crPackSheet = "CR_Packs_List"

// Workbook column headers.
const (
	colRPNumber = "CR Pack TDoc"
	colWGTdoc   = "WG Tdoc"
	colDecision = "CR Individual TSG decision"
	colSpec     = "Spec"
)

// CRRef pairs an RP-level CR pack with one of its working-group documents.
type CRRef struct {
	RPNumber   string
	R4Document string
}

// ParseCRPackList extracts approved CRs for the given spec number from a
// CR pack list workbook. A pack row lists multiple WG documents separated by
// commas; each becomes its own CRRef.
func ParseCRPackList(data []byte, specNumber string) ([]CRRef, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(crPackSheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q not found in workbook: %w", crPackSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", crPackSheet)
	}

	idx := make(map[string]int)
	for i, header := range rows[0] {
		idx[strings.TrimSpace(header)] = i
	}
	for _, required := range []string{colRPNumber, colWGTdoc, colDecision, colSpec} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("sheet %q is missing column %q", crPackSheet, required)
		}
	}

	var refs []CRRef
	for _, row := range rows[1:] {
		decision := strings.ToLower(strings.TrimSpace(cell(row, idx[colDecision])))
		spec := strings.TrimSpace(cell(row, idx[colSpec]))
		if decision != "approved" || spec != specNumber {
			continue
		}

		rpNumber := strings.TrimSpace(cell(row, idx[colRPNumber]))
		if rpNumber == "" {
			continue
		}
		// "R4-2412345, R4-2412399" lists every WG doc in the pack.
		wgDocs := strings.ReplaceAll(cell(row, idx[colWGTdoc]), " ", "")
		for _, doc := range strings.Split(wgDocs, ",") {
			if doc != "" {
				refs = append(refs, CRRef{RPNumber: rpNumber, R4Document: doc})
			}
		}
	}
	return refs, nil
}

// cell returns the row value at index i, tolerating the short rows excelize
// produces when trailing cells are empty.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
