package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	slogeval "github.com/Debodeep94/SLOG-Eval"
)

func newNextCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the item the user should label now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			asg, err := a.coord.CurrentAssignment(ctx, user)
			if err != nil {
				return err
			}
			printAssignment(cmd.OutOrStdout(), asg, a.coord.Schema())

			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "annotator id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newSubmitCmd(a *app) *cobra.Command {
	var (
		user   string
		phase  string
		item   string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record labels for one item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := slogeval.ParsePhase(phase)
			if err != nil {
				return err
			}
			key, err := slogeval.ParseItemKey(item)
			if err != nil {
				return err
			}
			payload, err := parseFields(fields)
			if err != nil {
				return err
			}

			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			outcome, err := a.coord.Submit(ctx, user, p, key, payload)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s %s: %s\n", p, key, outcome)

			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "annotator id")
	cmd.Flags().StringVarP(&phase, "phase", "p", "", "quant or qual")
	cmd.Flags().StringVarP(&item, "item", "i", "", "item key as provenance/id")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "label as name=value (repeatable)")
	for _, f := range []string{"user", "phase", "item"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func newProgressCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Print completion counts per phase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			cur, err := a.coord.Progress(ctx, user)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printf(w, "user:  %s\n", user)
			printf(w, "state: %s\n", cur.State)
			printf(w, "quant: %d/%d\n", cur.CompletedCount(slogeval.PhaseQuant), cur.QuantTotal)
			printf(w, "qual:  %d/%d\n", cur.CompletedCount(slogeval.PhaseQual), cur.QualTotal)

			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "annotator id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newPartitionCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Print the user's pools in canonical order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pools, err := a.coord.Pools(user)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, pool := range []slogeval.Pool{pools.Quant, pools.Qual} {
				printf(w, "%s (%d)\n", pool.Phase, pool.Len())
				for i, it := range pool.Items {
					printf(w, "  %3d  %s\n", i+1, it.Key())
				}
			}
			if len(pools.PivotKeys) < pools.RequestedPivots {
				printf(w, "warning: %d of %d requested pivot ids available\n", len(pools.PivotKeys), pools.RequestedPivots)
			}

			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "annotator id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func parseFields(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, f := range raw {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("field %q: expected name=value", f)
		}
		out[name] = value
	}

	return out, nil
}

func printAssignment(w io.Writer, a slogeval.Assignment, schema slogeval.LabelSchema) {
	if a.Complete() {
		printf(w, "all done: %s has completed every item\n", a.UserID)
		return
	}

	printf(w, "phase: %s  item: %s  (%d/%d, %d done)\n", a.Phase, a.Item.Key(), a.Position, a.Total, a.Completed)
	if a.Item.ImageRef != "" {
		printf(w, "image: %s\n", a.Item.ImageRef)
	}
	printf(w, "\n%s\n\n", a.Item.Text)

	names := make([]string, 0)
	for _, d := range schema.Dimensions(a.Phase) {
		if len(d.Allowed) > 0 {
			names = append(names, fmt.Sprintf("%s [%s]", d.Name, strings.Join(d.Allowed, "|")))
		} else {
			names = append(names, d.Name)
		}
	}
	slices.Sort(names)
	printf(w, "labels: %s\n", strings.Join(names, ", "))
}
