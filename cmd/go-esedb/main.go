package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/wilhasse/go-esedb"
	"github.com/wilhasse/go-esedb/compress"
	"github.com/wilhasse/go-esedb/value"
)

func main() {
	var (
		file      = flag.String("file", "", "Path to ESE database file (required)")
		table     = flag.String("table", "", "Table name to read")
		cacheSize = flag.Int("cache-pages", 0, "Page cache capacity (default: pager.DefaultCacheCapacity)")
		format    = flag.String("format", "text", "Output format: text, json, or summary")
		showRecs  = flag.Bool("records", false, "Show rows from -table")
		maxRecs   = flag.Int("max-records", 100, "Maximum rows to display")
		verbose   = flag.Bool("v", false, "Verbose output")
		useSnappy = flag.Bool("snappy", false, "Decompress COMPRESSED tagged columns with Snappy")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ESE Database Parser Tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -file Catalog.edb\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -file Catalog.edb -table MSysObjects -records\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -file Catalog.edb -format json\n", os.Args[0])
	}

	flag.Parse()

	if *file == "" {
		fmt.Fprintf(os.Stderr, "Error: -file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	var decompressor esedb.Decompressor
	if *useSnappy {
		decompressor = compress.Snappy{}
	}

	db, err := esedb.Open(*file, *cacheSize, decompressor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", *file, err)
		os.Exit(1)
	}
	defer db.Close()

	switch *format {
	case "json":
		outputJSON(db, *table, *showRecs, *maxRecs)
	case "summary":
		outputSummary(db)
	default:
		outputText(db, *table, *showRecs, *maxRecs, *verbose)
	}
}

func outputSummary(db *esedb.OpenedDB) {
	tables := db.Tables()
	fmt.Printf("Tables: %d\n", len(tables))
	for _, name := range tables {
		cols, err := db.Columns(name)
		if err != nil {
			fmt.Printf("  %s: error: %v\n", name, err)
			continue
		}
		fmt.Printf("  %s: %d columns\n", name, len(cols))
	}
}

func outputText(db *esedb.OpenedDB, table string, showRecs bool, maxRecs int, verbose bool) {
	tables := db.Tables()
	fmt.Printf("=== %s ===\n", "Database")
	fmt.Printf("Tables: %d\n", len(tables))
	for _, name := range tables {
		fmt.Printf("  %s\n", name)
	}

	if table == "" {
		return
	}

	cols, err := db.Columns(table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading columns of %q: %v\n", table, err)
		os.Exit(1)
	}

	fmt.Printf("\nTable %q: %d columns\n", table, len(cols))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  ID\tName\tType\tMax\tCodepage\n")
	for _, c := range cols {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Type, humanize.Bytes(uint64(c.Max)), c.Codepage)
	}
	w.Flush()

	if !showRecs {
		return
	}

	h, err := db.OpenTable(table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening table %q: %v\n", table, err)
		os.Exit(1)
	}
	defer db.CloseTable(h)

	fmt.Printf("\nRows:\n")
	rw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(rw, "  #\t")
	for _, c := range cols {
		fmt.Fprintf(rw, "%s\t", c.Name)
	}
	fmt.Fprintln(rw)

	count := 0
	for ok := true; ok && count < maxRecs; ok = h.MoveRow(esedb.MoveNext) {
		fmt.Fprintf(rw, "  %d\t", count)
		for _, c := range cols {
			raw, err := h.GetColumn(c.ID)
			if err != nil {
				fmt.Fprintf(rw, "<error: %v>\t", err)
				continue
			}
			v, err := value.Parse(c.Type, c.Codepage, raw)
			if err != nil || v == nil {
				fmt.Fprintf(rw, "NULL\t")
				continue
			}
			if verbose {
				fmt.Fprintf(rw, "%v (%s)\t", v, c.Type)
			} else {
				fmt.Fprintf(rw, "%v\t", v)
			}
		}
		fmt.Fprintln(rw)
		count++
	}
	rw.Flush()

	if count == maxRecs {
		fmt.Printf("  ... (showing first %d rows)\n", maxRecs)
	}
}

func outputJSON(db *esedb.OpenedDB, table string, showRecs bool, maxRecs int) {
	output := map[string]interface{}{
		"tables": db.Tables(),
	}

	if table != "" {
		cols, err := db.Columns(table)
		if err != nil {
			output["error"] = err.Error()
			encodeAndExit(output)
			return
		}
		colData := make([]map[string]interface{}, len(cols))
		for i, c := range cols {
			colData[i] = map[string]interface{}{
				"id":       c.ID,
				"name":     c.Name,
				"type":     c.Type.String(),
				"max":      c.Max,
				"codepage": c.Codepage,
			}
		}
		output["columns"] = colData

		if showRecs {
			h, err := db.OpenTable(table)
			if err != nil {
				output["rows_error"] = err.Error()
				encodeAndExit(output)
				return
			}
			defer db.CloseTable(h)

			var rows []map[string]interface{}
			count := 0
			for ok := true; ok && count < maxRecs; ok = h.MoveRow(esedb.MoveNext) {
				row := make(map[string]interface{}, len(cols))
				for _, c := range cols {
					raw, err := h.GetColumn(c.ID)
					if err != nil {
						row[c.Name] = nil
						continue
					}
					v, err := value.Parse(c.Type, c.Codepage, raw)
					if err != nil {
						row[c.Name] = nil
						continue
					}
					row[c.Name] = v
				}
				rows = append(rows, row)
				count++
			}
			output["rows"] = rows
		}
	}

	encodeAndExit(output)
}

func encodeAndExit(output map[string]interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
