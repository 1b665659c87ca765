package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bks/internal"
	"bks/internal/catalog"
	"bks/internal/config"
	"bks/internal/logger"
	"bks/internal/offer"
	"bks/internal/storage"
)

const (
	lastImportKey = "catalog.last_import"
	lastSyncKey   = "catalog.last_sync"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	must(err)
	defer func() { _ = log.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	// quotes price from the local components table; an empty table falls
	// back to the remote feed when one is configured
	source := catalog.Source(func(ctx context.Context) ([]internal.PricingComponent, error) {
		return db.ListActiveComponents()
	})
	if strings.TrimSpace(cfg.CatalogFeedURL) != "" {
		source = catalog.FallbackSource(source, catalog.NewClient(cfg).Source())
	}
	cache := catalog.NewCache(source, time.Duration(cfg.CatalogCacheTTLMin)*time.Minute)

	cmd := os.Args[1]
	switch cmd {
	case "catalog:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "price list xlsx path")
		sheet := fs.String("sheet", "", "sheet name (default: first sheet)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		components, err := catalog.ImportPriceListFile(*file, *sheet)
		must(err)
		must(db.UpsertComponents(components))
		must(db.SetMetadata(lastImportKey, time.Now().Format(time.RFC3339)))
		cache.Invalidate()
		fmt.Printf("imported %d components from %s\n", len(components), *file)
	case "catalog:sync":
		must(cfg.Require("CATALOG_FEED_URL", cfg.CatalogFeedURL))
		client := catalog.NewClient(cfg)
		components, err := client.GetComponents(context.Background())
		must(err)
		must(db.UpsertComponents(components))
		must(db.SetMetadata(lastSyncKey, time.Now().Format(time.RFC3339)))
		cache.Invalidate()
		fmt.Printf("catalog sync complete: %d components\n", len(components))
	case "catalog:list":
		components, err := db.ListComponents()
		must(err)
		for _, c := range components {
			active := "inactive"
			if c.Active {
				active = "active"
			}
			fmt.Printf("%-50s %10s kr/%-4s %s\n", c.Name, c.UnitPrice.StringFixed(2), c.Unit, active)
		}
		fmt.Printf("total: %d components\n", len(components))
	case "quote:calc":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		answersPath := fs.String("answers", "", "form answers json path")
		name := fs.String("name", "", "lead name")
		email := fs.String("email", "", "lead email")
		phone := fs.String("phone", "", "lead phone")
		address := fs.String("address", "", "lead address")
		out := fs.String("out", "", "optional xlsx output path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*answersPath) == "" {
			must(fmt.Errorf("--answers is required"))
		}
		answers, err := offer.LoadAnswers(*answersPath)
		must(err)

		req := offer.Request{Answers: answers}
		if strings.TrimSpace(*name) != "" {
			req.Lead = &internal.Lead{
				Name:    *name,
				Email:   optional(*email),
				Phone:   optional(*phone),
				Address: optional(*address),
			}
		}

		svc, err := offer.NewService(db, cfg, cache, log)
		must(err)
		result, err := svc.CreateQuote(context.Background(), req)
		must(err)

		printQuote(result.Quote)
		for _, m := range result.Missing {
			fmt.Printf("warning: component not in catalog, skipped: %s\n", m)
		}
		if strings.TrimSpace(*out) != "" {
			must(offer.ExportQuoteXLSX(result.Quote, *out))
			fmt.Printf("exported to %s\n", *out)
		}
	case "quote:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "quote id (BKS-...)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*id) == "" {
			must(fmt.Errorf("--id is required"))
		}
		q, err := db.GetQuote(*id)
		must(err)
		if q == nil {
			must(fmt.Errorf("quote not found: %s", *id))
		}
		printQuote(*q)
	case "quote:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max quotes to list")
		_ = fs.Parse(os.Args[2:])
		quotes, err := db.ListQuotes(*limit)
		must(err)
		for _, s := range quotes {
			lead := "-"
			if s.LeadName != nil {
				lead = *s.LeadName
			}
			fmt.Printf("%-18s %-25s %10s kr  %2d dagar  %s\n",
				s.ID, s.CreatedAt, s.TotalWithTax.StringFixed(0), s.EstimatedDays, lead)
		}
		fmt.Printf("total: %d quotes\n", len(quotes))
	case "quote:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "quote id (BKS-...)")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*id) == "" {
			must(fmt.Errorf("--id is required"))
		}
		q, err := db.GetQuote(*id)
		must(err)
		if q == nil {
			must(fmt.Errorf("quote not found: %s", *id))
		}
		path := *out
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(cfg.OutputDir, q.ID+".xlsx")
		}
		must(offer.ExportQuoteXLSX(*q, path))
		fmt.Printf("exported %s to %s\n", q.ID, path)
	default:
		usage()
		os.Exit(1)
	}
}

func printQuote(q internal.Quote) {
	fmt.Printf("offert %s (giltig till %s)\n", q.ID, q.ValidUntil.Format("2006-01-02"))
	for _, item := range q.Items {
		fmt.Printf("  %-50s %8.1f %-4s %10s kr  %12s kr\n",
			item.Name, item.Quantity, item.Unit, item.UnitPrice.StringFixed(2), item.LineTotal.StringFixed(2))
	}
	fmt.Println("  per kategori:")
	for _, ct := range q.CategorySummary {
		fmt.Printf("    %-20s %12s kr\n", ct.Category, ct.Total.StringFixed(2))
	}
	fmt.Printf("  summa exkl. moms: %s kr\n", q.Subtotal.StringFixed(0))
	fmt.Printf("  summa inkl. moms: %s kr\n", q.TotalWithTax.StringFixed(0))
	fmt.Printf("  uppskattad arbetstid: %d dagar\n", q.EstimatedDays)
}

func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func usage() {
	fmt.Println("usage: bks <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:import --file=./prislista.xlsx [--sheet=Blad1]")
	fmt.Println("  catalog:sync")
	fmt.Println("  catalog:list")
	fmt.Println("  quote:calc --answers=./answers.json [--name=... --email=... --phone=... --address=...] [--out=./out/offert.xlsx]")
	fmt.Println("  quote:show --id=BKS-20260901-1200")
	fmt.Println("  quote:list [--limit=20]")
	fmt.Println("  quote:export --id=BKS-20260901-1200 [--out=./out/offert.xlsx]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
