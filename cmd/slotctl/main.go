// Package main provides slotctl, an operator CLI for the occupancy document.
//
// Inspection commands never create or modify the document; the running bot is
// its only writer. The migrate command copies a file document into Postgres
// while the bot is stopped.
//
// Usage:
//
//	slotctl [--backend file|postgres] [--file PATH] [--dsn DSN] COMMAND
//
// Commands:
//
//	list [--limit N]             table of occupied slots with the total count
//	status NNN                   OCUPADO or DISPONIBLE for one slot
//	raw                          print the document as stored
//	migrate [--dry-run] [--force] copy the file document into Postgres (--dsn)
//
// Environment Variables:
//
//	STORAGE_FILE, STORAGE_BACKEND, DB_DSN: defaults for the flags above
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"

	"github.com/onnwee/slot-tender/db"
	"github.com/onnwee/slot-tender/slots"
)

var errNoDocument = errors.New("no occupancy document found")

type options struct {
	backend string
	file    string
	dsn     string
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("slotctl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts := options{}
	fs := pflag.NewFlagSet("slotctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVar(&opts.backend, "backend", envOr("STORAGE_BACKEND", "file"), "document backend: file or postgres")
	fs.StringVar(&opts.file, "file", envOr("STORAGE_FILE", "./states.json"), "path of the file document")
	fs.StringVar(&opts.dsn, "dsn", os.Getenv("DB_DSN"), "Postgres DSN")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("missing command: list, status, raw or migrate")
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "list":
		return runList(ctx, opts, rest, out)
	case "status":
		return runStatus(ctx, opts, rest, out)
	case "raw":
		return runRaw(ctx, opts, out)
	case "migrate":
		return runMigrate(ctx, opts, rest, out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runList(ctx context.Context, opts options, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	limit := fs.Int("limit", 0, "show at most N slots (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, closeFn, err := openExisting(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	listed, total, err := store.List(ctx, *limit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Slot", "Key"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, s := range listed {
		table.Append([]string{strconv.Itoa(i + 1), s.String(), s.Key()})
	}
	table.SetFooter([]string{"", "Total", strconv.Itoa(total)})
	table.Render()
	return nil
}

func runStatus(ctx context.Context, opts options, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: slotctl status NNN")
	}
	slot, err := slots.ParseSlot(args[0])
	if err != nil {
		return err
	}

	store, closeFn, err := openExisting(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	state, err := store.Query(ctx, slot)
	if err != nil {
		return err
	}
	label := "DISPONIBLE"
	if state == slots.Occupied {
		label = "OCUPADO"
	}
	_, err = fmt.Fprintf(out, "%s %s\n", slot, label)
	return err
}

func runRaw(ctx context.Context, opts options, out io.Writer) error {
	store, closeFn, err := openExisting(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := store.Raw(ctx)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runMigrate(ctx context.Context, opts options, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "show what would be copied without writing")
	force := fs.Bool("force", false, "overwrite an existing Postgres document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.dsn == "" {
		return fmt.Errorf("--dsn (or DB_DSN) is required for migrate")
	}

	src := slots.NewFileBackend(opts.file)
	if ok, err := src.Exists(ctx); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w at %s", errNoDocument, opts.file)
	}
	store := slots.NewStore(src)
	doc, err := store.Load(ctx)
	if err != nil {
		return err
	}
	data, err := store.Raw(ctx)
	if err != nil {
		return err
	}

	slog.Info("document to migrate", slog.String("file", opts.file), slog.Int("occupied", len(doc.Occupied)), slog.Bool("dry_run", *dryRun))
	if *dryRun {
		_, err := fmt.Fprintf(out, "would copy %d occupied slots from %s\n", len(doc.Occupied), opts.file)
		return err
	}

	database, err := db.Connect(ctx, opts.dsn)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.Migrate(ctx, database); err != nil {
		return err
	}

	dst := db.NewDocumentBackend(database, db.DefaultDocumentName)
	exists, err := dst.Exists(ctx)
	if err != nil {
		return err
	}
	if exists && !*force {
		return fmt.Errorf("postgres already holds a document; rerun with --force to overwrite")
	}
	if err := dst.WriteDocument(ctx, data); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "copied %d occupied slots into postgres\n", len(doc.Occupied))
	return err
}

// openExisting opens the configured backend without seeding a document.
func openExisting(ctx context.Context, opts options) (*slots.Store, func(), error) {
	var (
		backend slots.Backend
		closeFn = func() {}
	)
	switch opts.backend {
	case "file":
		backend = slots.NewFileBackend(opts.file)
	case "postgres":
		if opts.dsn == "" {
			return nil, nil, fmt.Errorf("--dsn (or DB_DSN) is required for the postgres backend")
		}
		database, err := db.Connect(ctx, opts.dsn)
		if err != nil {
			return nil, nil, err
		}
		backend = db.NewDocumentBackend(database, db.DefaultDocumentName)
		closeFn = func() { _ = database.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", opts.backend)
	}

	ok, err := backend.Exists(ctx)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if !ok {
		closeFn()
		return nil, nil, errNoDocument
	}
	return slots.NewStore(backend), closeFn, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
