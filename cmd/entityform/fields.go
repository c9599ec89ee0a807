package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-entityform/pkg/model"
)

func newFieldsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields [entity]",
		Short: "List the forms of the catalog or the fields of one form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if len(args) == 0 {
				fmt.Fprintln(w, "ENTITY\tCOLLECTION\tFIELDS")
				for _, name := range catalog.Names() {
					form, _ := catalog.Form(name)
					fmt.Fprintf(w, "%s\t%s\t%d\n", form.Entity, form.Collection, len(form.Fields))
				}
				return w.Flush()
			}

			form, ok := catalog.Form(args[0])
			if !ok {
				return fmt.Errorf("unknown form %q (available: %s)", args[0], strings.Join(catalog.Names(), ", "))
			}
			fmt.Fprintln(w, "NAME\tKIND\tLABEL\tFLAGS\tRULES")
			for _, field := range form.Fields {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", field.Name, fieldKind(field), field.DisplayLabel(), fieldFlags(field), fieldRules(field))
			}
			return w.Flush()
		},
	}
}

func fieldKind(field model.FieldSpec) string {
	if field.Kind == model.KindReference && field.Reference != nil {
		return "reference(" + field.Reference.Collection + ")"
	}
	return string(field.Kind)
}

func fieldFlags(field model.FieldSpec) string {
	var flags []string
	if field.IsRequired() {
		flags = append(flags, "required")
	}
	if field.ReadOnly {
		flags = append(flags, "readonly")
	}
	if field.DefaultNow {
		flags = append(flags, "now")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func fieldRules(field model.FieldSpec) string {
	var rules []string
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
			rules = append(rules, fmt.Sprintf("%s=%s", rule.Kind, rule.Params["value"]))
		case model.ValidationRulePattern:
			rules = append(rules, fmt.Sprintf("%s=%s", rule.Kind, rule.Params["pattern"]))
		default:
			rules = append(rules, string(rule.Kind))
		}
	}
	if len(rules) == 0 {
		return "-"
	}
	return strings.Join(rules, " ")
}
