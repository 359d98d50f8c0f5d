// Command tabledump exports the result of a SQL query against a SQLite
// database in any table export format.
//
//	tabledump -db app.db -query "SELECT name, population FROM countries" -sort -population -format xlsx -o countries.xlsx
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	_ "modernc.org/sqlite"

	exportsqlite "github.com/goliatone/go-tables/adapters/sqlite"
	"github.com/goliatone/go-tables/export"
	tablesql "github.com/goliatone/go-tables/sources/sql"
	"github.com/goliatone/go-tables/tables"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "tabledump: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	db      string
	query   string
	name    string
	format  string
	out     string
	sort    string
	exclude string
	sheet   string
	delim   string
	header  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("tabledump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.db, "db", "", "SQLite database file")
	fs.StringVar(&o.query, "query", "", "SELECT statement to export")
	fs.StringVar(&o.name, "name", "rows", "table name, used for the sheet, the SQLite table and the default file name")
	fs.StringVar(&o.format, "format", "csv", "export format: csv, json, ndjson, xlsx or sqlite")
	fs.StringVar(&o.out, "o", "", "output file; defaults to stdout, or a generated name with -o .")
	fs.StringVar(&o.sort, "sort", "", "comma separated columns, prefix with - for descending")
	fs.StringVar(&o.exclude, "exclude", "", "comma separated columns to leave out")
	fs.StringVar(&o.sheet, "sheet", "", "XLSX sheet name")
	fs.StringVar(&o.delim, "delimiter", ",", "CSV delimiter")
	fs.BoolVar(&o.header, "header", true, "write a header row")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.db == "" || o.query == "" {
		return o, errors.New("-db and -query are required")
	}
	if len([]rune(o.delim)) != 1 {
		return o, fmt.Errorf("delimiter must be a single character, got %q", o.delim)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", o.db)
	if err != nil {
		return err
	}
	defer db.Close()

	queries := tablesql.NewRegistry()
	if err := queries.Register(tablesql.Definition{Name: o.name, Query: o.query}); err != nil {
		return err
	}
	source, err := tablesql.NewSource(ctx, db, queries, o.name, nil)
	if err != nil {
		return err
	}

	renderers := export.DefaultRegistry()
	if err := exportsqlite.Register(renderers); err != nil {
		return err
	}
	table, err := tables.New(tables.Spec{Name: o.name}, source,
		tables.WithRenderers(renderers),
		tables.WithOrderBy(splitList(o.sort)...),
	)
	if err != nil {
		return err
	}

	format := export.NormalizeFormat(export.Format(o.format))
	var w io.Writer = stdout
	target := "stdout"
	if o.out != "" {
		target = o.out
		if o.out == "." {
			if target, err = export.Filename("", o.name, format, time.Now()); err != nil {
				return err
			}
		}
		f, err := os.Create(target)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	stats, err := table.Export(ctx, format, w, tables.ExportOptions{
		OmitHeader:     !o.header,
		SheetName:      o.sheet,
		ExcludeColumns: splitList(o.exclude),
		Delimiter:      []rune(o.delim)[0],
	})
	if err != nil {
		return err
	}

	summary := color.New(color.FgGreen)
	summary.Fprintf(stderr, "wrote %d rows (%d bytes) of %s to %s\n", stats.Rows, stats.Bytes, format, target)
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
