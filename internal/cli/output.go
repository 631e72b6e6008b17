package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/kidandcat/tracker/internal/model"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormat(f string) bool {
	switch f {
	case formatTable, formatJSON, formatYAML:
		return true
	}
	return false
}

// emit writes v as JSON or YAML, or calls table for the default format.
func (c *CLI) emit(w io.Writer, v any, table func(tw *tabwriter.Writer)) error {
	switch c.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func (c *CLI) issueTable(issues []model.Issue) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tASSIGNEE\tTITLE\tCREATED")
		for _, i := range issues {
			assignee := "-"
			if i.AssigneeID != nil {
				assignee = c.store.UserName(*i.AssigneeID)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				i.ID, i.Status.Label(), i.Priority, assignee, i.Title, ago(i.CreatedAt))
		}
	}
}

func (c *CLI) issueDetail(i model.Issue) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		assignee := "-"
		if i.AssigneeID != nil {
			assignee = c.store.UserName(*i.AssigneeID)
		}
		fmt.Fprintf(tw, "ID:\t%s\n", i.ID)
		fmt.Fprintf(tw, "Title:\t%s\n", i.Title)
		fmt.Fprintf(tw, "Status:\t%s\n", i.Status.Label())
		fmt.Fprintf(tw, "Priority:\t%s\n", i.Priority)
		fmt.Fprintf(tw, "Assignee:\t%s\n", assignee)
		fmt.Fprintf(tw, "Created by:\t%s\n", c.store.UserName(i.CreatedBy))
		fmt.Fprintf(tw, "Project:\t%s\n", orDash(i.ProjectID))
		fmt.Fprintf(tw, "Start:\t%s\n", orDash(i.StartDate))
		fmt.Fprintf(tw, "Due:\t%s\n", orDash(i.DueDate))
		fmt.Fprintf(tw, "Created:\t%s\n", ago(i.CreatedAt))
		if i.Description != "" {
			fmt.Fprintf(tw, "\n%s\n", i.Description)
		}
		if len(i.Comments) > 0 {
			fmt.Fprintf(tw, "\nComments (%d):\n", len(i.Comments))
			for _, cm := range i.Comments {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", cm.AuthorName, ago(cm.CreatedAt), cm.Text)
			}
		}
	}
}

func projectTable(projects []model.Project) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tCREATED")
		for _, p := range projects {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Description, ago(p.CreatedAt))
		}
	}
}

func userTable(users []model.User) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
		}
	}
}

func notificationTable(ns []model.Notification) func(*tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tREAD\tTYPE\tISSUE\tMESSAGE\tCREATED")
		for _, n := range ns {
			read := " "
			if n.Read {
				read = "x"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				n.ID, read, n.Type, orDash(n.IssueID), n.Message, ago(n.CreatedAt))
		}
	}
}
