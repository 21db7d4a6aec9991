package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pupilbridge/internal/core/tables"
	"github.com/JonMunkholm/pupilbridge/internal/memory"
)

func newRulesCmd() *cobra.Command {
	var importType string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage stored correction rules",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			_, err := tables.NewRegistry().Get(importType)
			return err
		},
	}
	cmd.PersistentFlags().StringVarP(&importType, "type", "t", "", "Import type (required)")
	_ = cmd.MarkPersistentFlagRequired("type")

	cmd.AddCommand(newRulesListCmd(&importType))
	cmd.AddCommand(newRulesAddCmd(&importType))
	cmd.AddCommand(newRulesExportCmd(&importType))
	cmd.AddCommand(newRulesImportCmd(&importType))
	return cmd
}

func newRulesListCmd(importType *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the rules of an import type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(st memory.Store) error {
				rules, err := st.Load(cmd.Context(), *importType)
				if err != nil {
					return err
				}
				return printRules(cmd.OutOrStdout(), rules)
			})
		},
	}
}

type addOptions struct {
	column          string
	from            string
	to              string
	identifierCol   string
	identifierValue string
}

func newRulesAddCmd(importType *string) *cobra.Command {
	var opts addOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a correction as a rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.from == opts.to {
				return fmt.Errorf("invalid request: --from and --to are equal")
			}
			rule := memory.NewRule(*importType, opts.column, opts.from, opts.to, opts.identifierCol, opts.identifierValue)
			return withStore(cmd.Context(), func(st memory.Store) error {
				rules, err := st.Load(cmd.Context(), *importType)
				if err != nil {
					return err
				}
				rules = memory.AddRule(rules, rule)
				if err := st.Save(cmd.Context(), *importType, rules); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stored rule for %s: %q -> %q (%d rules)\n",
					rule.Column, rule.OriginalValue, rule.CorrectedValue, len(rules))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.column, "column", "", "Column the rule rewrites (required)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Original value")
	cmd.Flags().StringVar(&opts.to, "to", "", "Corrected value")
	cmd.Flags().StringVar(&opts.identifierCol, "id-column", "", "Restrict the rule to rows where this column holds --id-value")
	cmd.Flags().StringVar(&opts.identifierValue, "id-value", "", "Identifier value for --id-column")
	_ = cmd.MarkFlagRequired("column")
	cmd.MarkFlagsRequiredTogether("id-column", "id-value")

	return cmd
}

func newRulesExportCmd(importType *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the rules of an import type as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(st memory.Store) error {
				rules, err := st.Load(cmd.Context(), *importType)
				if err != nil {
					return err
				}
				data, err := memory.Export(rules, *importType, exportedFrom(), time.Now())
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				return os.WriteFile(output, data, 0o644)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func newRulesImportCmd(importType *string) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an exported rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			imported, err := memory.Import(data, *importType)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), func(st memory.Store) error {
				var rules []memory.Rule
				if !replace {
					if rules, err = st.Load(cmd.Context(), *importType); err != nil {
						return err
					}
				}
				rules = memory.Merge(rules, imported)
				if err := st.Save(cmd.Context(), *importType, rules); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d rules (%d total)\n", len(imported), len(rules))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the stored rules instead of merging")
	return cmd
}

// withStore opens the configured rule store for the duration of fn.
func withStore(ctx context.Context, fn func(memory.Store) error) error {
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(st)
}

func exportedFrom() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "pupilcheck"
	}
	return "pupilcheck@" + host
}

func printRules(out io.Writer, rules []memory.Rule) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOLUMN\tFROM\tTO\tSCOPE\tAPPLIED")
	for _, r := range rules {
		scope := "-"
		if r.MatchType == memory.MatchIdentifier {
			scope = r.IdentifierColumn + "=" + r.IdentifierValue
		}
		fmt.Fprintf(tw, "%s\t%s\t%q\t%q\t%s\t%d\n", r.ID, r.Column, r.OriginalValue, r.CorrectedValue, scope, r.AppliedCount)
	}
	return tw.Flush()
}
