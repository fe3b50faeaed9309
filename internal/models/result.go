package models

// ResultRow is a single approved change-request match. The JSON keys are the
// display column headers consumed by polling clients, so they keep their
// human-readable form.
type ResultRow struct {
	MeetingFolder   string `json:"Meeting Folder"`
	RPNumber        string `json:"RP Number"`
	R4Document      string `json:"R4 Document"`
	MatchingClause  string `json:"Matching Clause"`
	SummaryOfChange string `json:"Summary of Change"`
}

// ResultColumns is the column order used by result tables and exported
// workbooks.
var ResultColumns = []string{
	"Meeting Folder",
	"RP Number",
	"R4 Document",
	"Matching Clause",
	"Summary of Change",
}

// Fields returns the row values in ResultColumns order.
func (r ResultRow) Fields() []string {
	return []string{r.MeetingFolder, r.RPNumber, r.R4Document, r.MatchingClause, r.SummaryOfChange}
}
