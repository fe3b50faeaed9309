// Command spectrack-cli starts a tracking run against a spectrack server,
// follows its progress and exports the results to an Excel workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spectrack/spectrack-go/internal/client"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "Base URL of the spectrack server")
		spec      = flag.String("spec", "", "Spec number to track, e.g. 38.101-1")
		out       = flag.String("out", client.DefaultExportFile, "Path of the exported results workbook")
		noExport  = flag.Bool("no-export", false, "Skip writing the results workbook")
	)
	flag.Parse()

	if *spec == "" {
		fmt.Fprintln(os.Stderr, "usage: spectrack-cli -spec <number> [-server URL] [-out file.xlsx]")
		os.Exit(2)
	}

	pc := client.NewController(client.New(*serverURL))
	if err := pc.Start(context.Background(), *spec); err != nil {
		log.Fatalf("Failed to start tracking: %v", err)
	}
	defer pc.Stop()

	fmt.Printf("Tracking spec %s on %s\n", *spec, *serverURL)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	lastProgress := -1
	for done := false; !done; {
		select {
		case <-pc.Done():
			done = true
		case <-ticker.C:
			if p := pc.Progress(); p != lastProgress {
				fmt.Printf("progress: %d%%\n", p)
				lastProgress = p
			}
		}
	}
	fmt.Println("progress: 100%")

	if logs := pc.Logs(); logs != "" {
		fmt.Println("\n--- log tail ---")
		fmt.Println(tail(logs, 10))
	}

	rows := pc.Results()
	fmt.Printf("\n%d matching change requests\n", len(rows))
	if len(rows) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MEETING\tRP\tR4 DOC\tCLAUSE")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				row.MeetingFolder, row.RPNumber, row.R4Document, row.MatchingClause)
		}
		w.Flush()
	}

	if *noExport {
		return
	}
	if err := pc.ExportResults(*out); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("Exported results to %s\n", *out)
}

// tail returns the last n lines of text.
func tail(text string, n int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
