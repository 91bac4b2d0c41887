package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"Storefront/internal/i18n"
)

func newLangCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [code]",
		Short: "Show or set the interface language (" + strings.Join(i18n.Supported, ", ") + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if len(args) == 1 {
				if err := a.i18n.Use(args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.i18n.Current())
			return nil
		},
	}
}

func newTablesCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Query the table API",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Check the API and its database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				h, err := get().api.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (database %s)\n", h.Message, h.Database)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list <table>",
			Short: "List all records of a table",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rows, err := get().api.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, rows)
			},
		},
		&cobra.Command{
			Use:   "get <table> <id>",
			Short: "Show one record",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[1])
				if err != nil {
					return err
				}
				row, err := get().api.Get(cmd.Context(), args[0], id)
				if err != nil {
					return err
				}
				return printJSON(cmd, row)
			},
		},
		&cobra.Command{
			Use:   "create <table> key=value...",
			Short: "Create a record",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				rec := make(map[string]any, len(args)-1)
				for _, kv := range args[1:] {
					k, v, ok := strings.Cut(kv, "=")
					if !ok || k == "" {
						return errors.Errorf("expected key=value, got %q", kv)
					}
					rec[k] = v
				}
				id, err := get().api.Create(cmd.Context(), args[0], rec)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %d\n", args[0], id)
				return nil
			},
		},
	)
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
