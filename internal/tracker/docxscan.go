package tracker

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/antchfx/xmlquery"
)

// ClauseMatch is the outcome of scanning one R4 document: the first clause
// from the clause set found in its "Clauses affected" section, plus the
// document's summary of change.
type ClauseMatch struct {
	Clause  string
	Summary string
}

// clausePattern matches clause numbers such as 4.1, 5.3.2 or 6.4.2.1a.
var clausePattern = regexp.MustCompile(`[\d\w.]+\.[\d\w]+`)

// ScanDocument scans a .docx change request for clauses affected that appear
// in the clause set. It returns nil when the document touches none of them.
func ScanDocument(docxData []byte, clauses *ClauseSet) (*ClauseMatch, error) {
	blocks, err := extractTextBlocks(docxData)
	if err != nil {
		return nil, err
	}

	matched, affectedIdx := findAffectedClauses(blocks, clauses)
	if len(matched) == 0 {
		return nil, nil
	}

	summary, found := extractSummaryOfChange(blocks)
	if !found && affectedIdx != -1 {
		summary = summaryNearClauses(blocks, affectedIdx)
	}

	return &ClauseMatch{Clause: matched[0], Summary: summary}, nil
}

// extractTextBlocks pulls the text out of a .docx file: first the top-level
// body paragraphs, then every table cell.
func extractTextBlocks(docxData []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(docxData), int64(len(docxData)))
	if err != nil {
		return nil, fmt.Errorf("not a valid docx file: %w", err)
	}

	var docXML []byte
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docXML, err = readZipEntry(f)
			if err != nil {
				return nil, err
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("docx has no word/document.xml")
	}

	doc, err := xmlquery.Parse(bytes.NewReader(docXML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document.xml: %w", err)
	}

	var blocks []string
	body := xmlquery.FindOne(doc, "//w:body")
	if body == nil {
		return nil, fmt.Errorf("document.xml has no w:body element")
	}

	// Paragraphs directly under the body. Paragraphs inside tables are
	// covered by the cell pass below.
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == "p" {
			blocks = append(blocks, paragraphText(child))
		}
	}
	for _, cell := range xmlquery.Find(body, "//w:tc") {
		var parts []string
		for _, p := range xmlquery.Find(cell, ".//w:p") {
			parts = append(parts, paragraphText(p))
		}
		blocks = append(blocks, strings.Join(parts, "\n"))
	}
	return blocks, nil
}

func paragraphText(p *xmlquery.Node) string {
	var sb strings.Builder
	for _, t := range xmlquery.Find(p, ".//w:t") {
		sb.WriteString(t.InnerText())
	}
	return sb.String()
}

// findAffectedClauses locates "Clauses affected" sections and collects every
// clause number from the set mentioned in the section text or the five
// blocks that follow it. Returns the matches in discovery order and the
// index of the last section found.
func findAffectedClauses(blocks []string, clauses *ClauseSet) ([]string, int) {
	var matched []string
	seen := make(map[string]bool)
	affectedIdx := -1

	for i, text := range blocks {
		if !strings.Contains(strings.ToLower(text), "clauses affected") {
			continue
		}
		affectedIdx = i

		searchArea := text
		for k := 1; k <= 5 && i+k < len(blocks); k++ {
			searchArea += " " + blocks[i+k]
		}

		for _, candidate := range clausePattern.FindAllString(searchArea, -1) {
			cleaned := strings.Trim(candidate, "., ")
			if clauses.Contains(cleaned) && !seen[cleaned] {
				seen[cleaned] = true
				matched = append(matched, cleaned)
			}
		}
	}
	return matched, affectedIdx
}

// summaryHeaders are lines that repeat the section title and must not be
// treated as content.
var summaryHeaders = map[string]bool{
	"summary of change:":     true,
	"summary of the change:": true,
	"summary of change":      true,
	"summary of the change":  true,
}

var colonHeaderExclusions = []string{
	"title", "heading", "section", "chapter", "clause", "item",
	"specification", "requirement",
}

// extractSummaryOfChange finds the "Summary of change" section and gathers
// the content paragraphs that follow it, stopping at the next section
// header.
func extractSummaryOfChange(blocks []string) (string, bool) {
	for i, text := range blocks {
		lower := strings.ToLower(text)
		if !strings.Contains(lower, "summary of change") &&
			!strings.Contains(lower, "summary of the change") {
			continue
		}

		var lines []string
		start := i + 1
		for k := start; k < len(blocks) && k < start+10; k++ {
			para := strings.TrimSpace(blocks[k])
			if para == "" || summaryHeaders[strings.ToLower(para)] {
				continue
			}
			if isSectionHeader(para) || isColonHeader(para) {
				break
			}
			if len(lines) == 0 || lines[len(lines)-1] != para {
				lines = append(lines, para)
			}
		}
		return strings.TrimSpace(strings.Join(lines, "\n")), true
	}
	return "", false
}

// summaryNearClauses is the fallback when no summary section exists: gather
// the content paragraphs right after the "Clauses affected" block.
func summaryNearClauses(blocks []string, affectedIdx int) string {
	var sb strings.Builder
	for i := affectedIdx + 1; i < len(blocks) && i < affectedIdx+15; i++ {
		para := strings.TrimSpace(blocks[i])
		if para == "" || strings.Contains(strings.ToLower(para), "clauses affected") {
			continue
		}
		if (isAllUpper(para) && len(para) < 100) || strings.HasSuffix(para, ":") {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(para)
	}
	return sb.String()
}

func isSectionHeader(para string) bool {
	if !isAllUpper(para) || len(para) >= 100 {
		return false
	}
	lower := strings.ToLower(para)
	switch lower {
	case "summary of change", "summary of the change",
		"description of change", "details of change", "explanation of change":
		return false
	}
	return true
}

func isColonHeader(para string) bool {
	if !strings.HasSuffix(para, ":") || len(para) >= 50 {
		return false
	}
	lower := strings.ToLower(para)
	switch lower {
	case "summary of change", "summary of the change", "description of change",
		"table of changes", "list of changes", "overview", "section":
		return false
	}
	for _, keyword := range colonHeaderExclusions {
		if strings.Contains(lower, keyword) {
			return false
		}
	}
	return true
}

// isAllUpper reports whether the text contains at least one letter and no
// lowercase letters.
func isAllUpper(text string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
