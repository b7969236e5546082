package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/service"
)

// demosCommand lets operators read the demo-request inbox straight from the database.
func demosCommand() *cli.Command {
	return &cli.Command{
		Name:  "demos",
		Usage: "List demo requests, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "only show requests with this status (new, contacted, scheduled, completed)"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			b := newBackends()
			defer b.Close()
			if err := b.openDatabase(ctx, cfg, logger); err != nil {
				return err
			}

			intake := service.NewIntakeService(service.IntakeDependencies{DemoRequestRepo: b.demos, Logger: logger})
			reqs, err := intake.ListDemoRequests(ctx)
			if err != nil {
				return err
			}
			reqs = filterDemoRequests(reqs, c.String("status"))

			if c.Bool("json") {
				out, err := json.MarshalIndent(reqs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			printDemoRequests(reqs)
			return nil
		},
	}
}

func filterDemoRequests(reqs []domain.DemoRequest, status string) []domain.DemoRequest {
	if status == "" {
		return reqs
	}
	out := reqs[:0]
	for _, r := range reqs {
		if strings.EqualFold(string(r.Status), status) {
			out = append(out, r)
		}
	}
	return out
}

func printDemoRequests(reqs []domain.DemoRequest) {
	if len(reqs) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tCOMPANY\tSIZE\tINTEREST\tCONTACT\tPREFERRED\tCREATED")
	for _, r := range reqs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s <%s>\t%s\t%s\n",
			r.ID, r.Status, r.Company, r.CompanySize, r.PrimaryInterest, r.Name, r.Email, r.PreferredTime,
			r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}
