package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"smartfile/internal/database"
	"smartfile/internal/exitcodes"
	"smartfile/internal/pathutil"
)

func main() {
	dbPath := flag.String("db", "/var/lib/smartfile/operations.db", "Path to operation history database")
	recent := flag.Int("recent", 0, "Show N most recent operations")
	stats := flag.Bool("stats", false, "Show operation statistics")
	action := flag.String("action", "", "Filter by action (move, copy, delete, create_folder)")
	source := flag.String("source", "", "Filter by source path pattern (SQL LIKE syntax)")
	failed := flag.Int("failed", 0, "Show N most recent failed operations")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	db, err := database.NewHistoryDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *source != "":
		showBySource(db, *source, *jsonOutput)
	case *failed > 0:
		showFailed(db, *failed, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  smartfile-query --recent 10            # Show 10 most recent operations")
		fmt.Println("  smartfile-query --stats                # Show operation statistics")
		fmt.Println("  smartfile-query --action delete        # Show only delete operations")
		fmt.Println("  smartfile-query --source '/data/%'     # Show operations under /data")
		fmt.Println("  smartfile-query --failed 10            # Show 10 most recent failures")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.HistoryDB, days int, jsonOutput bool) {
	stats, err := db.GetOperationStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Operation Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Total Operations: %d\n", stats.TotalOperations)
	fmt.Printf("Succeeded:        %d\n", stats.TotalSucceeded)
	fmt.Printf("Failed:           %d\n", stats.TotalFailed)
	fmt.Printf("Dry Runs:         %d\n", stats.TotalDryRuns)
	fmt.Printf("Files Affected:   %d\n", stats.TotalFilesAffected)
	fmt.Printf("Bytes Processed:  %s\n\n", pathutil.HumanReadableSize(stats.TotalBytesProcessed))

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecent(db *database.HistoryDB, limit int, jsonOutput bool) {
	records, err := db.GetRecentOperations(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent operations: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	printRecords(records)
}

func showByAction(db *database.HistoryDB, action string, jsonOutput bool) {
	records, err := db.GetOperationsByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Operations with action: %s\n\n", action)
	printRecords(records)
}

func showBySource(db *database.HistoryDB, pathPattern string, jsonOutput bool) {
	records, err := db.GetOperationsBySource(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by source: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Operations matching source pattern: %s\n\n", pathPattern)
	printRecords(records)
}

func showFailed(db *database.HistoryDB, limit int, jsonOutput bool) {
	records, err := db.GetFailedOperations(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get failed operations: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Last %d failed operations:\n\n", limit)
	printRecords(records)
}

func printRecords(records []database.OperationRecord) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tPattern\tStatus\tAffected\tBytes\tSource")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t-------\t------\t--------\t-----\t------")

	for _, r := range records {
		timestamp := r.Timestamp.Format("2006-01-02 15:04:05")
		status := "ok"
		switch {
		case r.DryRun:
			status = "dry-run"
		case !r.Success:
			status = "failed"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, timestamp, r.Action, r.Pattern, status,
			r.FilesAffected, pathutil.HumanReadableSize(r.BytesProcessed), r.Source)
	}
	_ = w.Flush()
}
