// Command seed-catalog creates default categories and statuses that do not
// exist yet. Task completion needs at least one status flagged completed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/todolist/todolist/internal/repository"
	"github.com/todolist/todolist/internal/service"
)

type output struct {
	Categories map[string]string `json:"categories"`
	Statuses   map[string]string `json:"statuses"`
	Created    int               `json:"created"`
}

func main() {
	var (
		databaseURL     = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		categoriesInput = flag.String("categories", "Work,Personal,Shopping", "Comma-separated category names")
		openInput       = flag.String("statuses", "New,In progress", "Comma-separated names of open statuses")
		doneInput       = flag.String("completed", "Done", "Comma-separated names of completed statuses")
		format          = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if len(parseNames(*doneInput)) == 0 {
		fmt.Fprintln(os.Stderr, "at least one completed status is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	catalog := service.NewCatalogService(repo)
	out := output{Categories: map[string]string{}, Statuses: map[string]string{}}

	if err := seedCategories(ctx, catalog, parseNames(*categoriesInput), &out); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := seedStatuses(ctx, catalog, parseNames(*openInput), false, &out); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := seedStatuses(ctx, catalog, parseNames(*doneInput), true, &out); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("created %d, categories %d, statuses %d\n", out.Created, len(out.Categories), len(out.Statuses))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func seedCategories(ctx context.Context, catalog *service.CatalogService, names []string, out *output) error {
	existing, err := catalog.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range existing {
		out.Categories[c.Name] = c.ID
	}

	for _, name := range names {
		if _, ok := out.Categories[name]; ok {
			continue
		}
		c, err := catalog.CreateCategory(ctx, name)
		if err != nil {
			return fmt.Errorf("create category %q: %w", name, err)
		}
		out.Categories[c.Name] = c.ID
		out.Created++
	}
	return nil
}

func seedStatuses(ctx context.Context, catalog *service.CatalogService, names []string, completed bool, out *output) error {
	existing, err := catalog.ListStatuses(ctx)
	if err != nil {
		return fmt.Errorf("list statuses: %w", err)
	}
	for _, s := range existing {
		out.Statuses[s.Name] = s.ID
	}

	for _, name := range names {
		if _, ok := out.Statuses[name]; ok {
			continue
		}
		s, err := catalog.CreateStatus(ctx, name, completed)
		if err != nil {
			return fmt.Errorf("create status %q: %w", name, err)
		}
		out.Statuses[s.Name] = s.ID
		out.Created++
	}
	return nil
}

func parseNames(input string) []string {
	parts := strings.Split(input, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
