package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/editor"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		assignments []string
		showFields  bool
	)
	cmd := &cobra.Command{
		Use:   "edit <type> [id]",
		Short: "Edit one content record in place",
		Long: "Opens the editor for a content type, applies --set field=value pairs and saves.\n" +
			"Types: " + strings.Join(contentTypeNames(), ", "),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, err := enums.ParseContentType(args[0])
			if err != nil {
				return err
			}
			spec, err := editor.Lookup(contentType)
			if err != nil {
				return err
			}
			if showFields {
				printFields(cmd, spec)
				return nil
			}
			var id string
			if len(args) == 2 {
				id = args[1]
			}
			values, err := parseAssignments(assignments)
			if err != nil {
				return err
			}
			return a.edit(cmd, spec, id, values)
		},
	}
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "field=value, repeatable")
	cmd.Flags().BoolVar(&showFields, "fields", false, "list the fields of the type and exit")
	return cmd
}

func (a *app) edit(cmd *cobra.Command, spec editor.Spec, id string, values map[string]string) error {
	ctx := cmd.Context()

	if !spec.Target.Local {
		var state editsession.State
		err := a.call(ctx, func() (err error) {
			state, err = a.client.EditMode(ctx)
			return err
		})
		if err != nil {
			return err
		}
		if !state.Active {
			return errors.New("edit mode is off; run cafectl edit-mode toggle")
		}
	}

	initial := editor.Record{}
	if !spec.Target.Local {
		path, err := spec.Path(id)
		if err != nil {
			return err
		}
		var current map[string]any
		err = a.call(ctx, func() (err error) {
			current, err = a.client.GetRecord(ctx, path)
			return err
		})
		if err != nil {
			return err
		}
		initial = spec.Initial(current)
	}
	if id != "" && initial.ID() == "" {
		initial["id"] = id
	}

	var saved editor.Record
	modal, err := editor.Open(spec.Type, initial, a.client, func(rec editor.Record) { saved = rec })
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(values) {
		if err := modal.Set(name, values[name]); err != nil {
			return err
		}
	}

	if err := a.call(ctx, func() error { return modal.Submit(ctx) }); err != nil {
		var verr *editor.ValidationError
		if errors.As(err, &verr) {
			for _, name := range sortedKeys(verr.Fields) {
				printf(cmd.ErrOrStderr(), "  %s: %s\n", name, verr.Fields[name])
			}
			return errors.New("record not saved")
		}
		if msg := modal.Message(); msg != "" {
			return errors.New(msg)
		}
		return err
	}

	out, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Saved %s\n%s\n", spec.Type, out)
	return nil
}

func parseAssignments(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected field=value", pair)
		}
		out[name] = value
	}
	return out, nil
}

func printFields(cmd *cobra.Command, spec editor.Spec) {
	for _, f := range spec.Fields {
		mark := ""
		if f.Required {
			mark = " *"
		}
		line := fmt.Sprintf("%-16s %-9s %s%s", f.Name, f.Kind, f.Label, mark)
		if len(f.Options) > 0 {
			line += " [" + strings.Join(f.Options, "|") + "]"
		}
		printf(cmd.OutOrStdout(), "%s\n", line)
	}
}

func contentTypeNames() []string {
	types := enums.ContentTypes()
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.String())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
