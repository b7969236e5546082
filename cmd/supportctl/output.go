package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spec-kit/support-portal/pkg/client"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func printTickets(items []client.Ticket) {
	rows := make([][]string, 0, len(items))
	for _, t := range items {
		rows = append(rows, []string{t.ID, t.Status, t.Priority, t.Category, t.Title, t.CustomerName, orDash(t.AssignedTo), formatTime(t.CreatedAt)})
	}
	printTable([]string{"ID", "STATUS", "PRIORITY", "CATEGORY", "TITLE", "CUSTOMER", "ASSIGNED", "CREATED"}, rows)
	if len(items) > 0 {
		counts := client.StatusCounts(items)
		fmt.Printf("\nopen %d  in-progress %d  resolved %d  closed %d\n",
			counts["open"], counts["in-progress"], counts["resolved"], counts["closed"])
	}
}

func printTicket(t *client.Ticket) {
	printKV([][2]string{
		{"id", t.ID},
		{"title", t.Title},
		{"status", t.Status},
		{"priority", t.Priority},
		{"category", t.Category},
		{"customer", fmt.Sprintf("%s <%s>", t.CustomerName, t.CustomerEmail)},
		{"assigned", orDash(t.AssignedTo)},
		{"created", formatTime(t.CreatedAt)},
		{"updated", formatTime(t.UpdatedAt)},
	})
	fmt.Printf("\n%s\n", t.Description)
}

// formatError renders API failures with their per-field details.
func formatError(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return "error: " + err.Error()
	}
	var b strings.Builder
	b.WriteString("error: " + apiErr.Title)
	if apiErr.Message != "" && apiErr.Message != apiErr.Title {
		b.WriteString(": " + apiErr.Message)
	}
	fields := make([]string, 0, len(apiErr.Details))
	for field := range apiErr.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, strings.Join(apiErr.Details[field], "; "))
	}
	return b.String()
}
