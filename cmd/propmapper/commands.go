package main

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/fatih/color"
	gojson "github.com/goccy/go-json"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/reoring/propmapper"
	"github.com/reoring/propmapper/source"
)

func newCheckCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <input>",
		Short: "Decode the input and report validation issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, dict, err := o.load(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := o.create(cmd, m, dict); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("ok"))
			return nil
		},
	}
}

func newDecodeCmd(o *options) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "decode <input>",
		Short: "Decode the input and print the resulting object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, dict, err := o.load(cmd, args[0])
			if err != nil {
				return err
			}
			obj, decErr := o.create(cmd, m, dict)
			if !partial(decErr) {
				return decErr
			}
			if dump {
				fmt.Fprint(cmd.OutOrStdout(), spew.Sdump(obj))
				return decErr
			}
			rec, ok := obj.(*propmapper.Record)
			if !ok {
				return fmt.Errorf("unexpected object %T", obj)
			}
			b, err := source.JSON{Indent: "  "}.Encode(rec.Map())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return decErr
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print a Go value dump instead of JSON")
	return cmd
}

func newRoundtripCmd(o *options) *cobra.Command {
	var includeNull, validate, patch bool
	cmd := &cobra.Command{
		Use:   "roundtrip <input>",
		Short: "Decode then export the input and show what changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, dict, err := o.load(cmd, args[0])
			if err != nil {
				return err
			}
			obj, decErr := o.create(cmd, m, dict)
			if !partial(decErr) {
				return decErr
			}
			var opts []propmapper.ExportOption
			if validate {
				opts = append(opts, propmapper.ValidateValues)
			}
			if includeNull {
				opts = append(opts, propmapper.IncludeNullValue)
			}
			out, encErr := m.ExportObject(obj, opts...)
			if !partial(encErr) {
				return encErr
			}
			if iss, ok := propmapper.AsIssues(encErr); ok {
				printIssues(cmd.ErrOrStderr(), iss)
			}
			issues := joinIssues(decErr, encErr)

			before, err := gojson.MarshalIndent(dict, "", "  ")
			if err != nil {
				return err
			}
			after, err := gojson.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			if patch {
				p, err := jsonpatch.CreateMergePatch(before, after)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(p))
				return issues
			}
			fmt.Fprint(cmd.OutOrStdout(), lineDiff(string(before)+"\n", string(after)+"\n"))
			return issues
		},
	}
	cmd.Flags().BoolVar(&includeNull, "include-null", false, "export null values")
	cmd.Flags().BoolVar(&validate, "validate", false, "run validators on exported values")
	cmd.Flags().BoolVar(&patch, "patch", false, "print an RFC 7386 merge patch instead of a diff")
	return cmd
}

// partial reports whether err still leaves a usable result: nil or
// validation issues only.
func partial(err error) bool {
	if err == nil {
		return true
	}
	_, ok := propmapper.AsIssues(err)
	return ok
}

// joinIssues merges the issues carried by errs; nil when there are none.
func joinIssues(errs ...error) error {
	var all propmapper.Issues
	for _, err := range errs {
		if iss, ok := propmapper.AsIssues(err); ok {
			all = append(all, iss...)
		}
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

// lineDiff renders a line-oriented unified-style diff of a and b. Equal
// inputs render as an empty string.
func lineDiff(a, b string) string {
	if a == b {
		return ""
	}
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	add := color.New(color.FgGreen).SprintFunc()
	del := color.New(color.FgRed).SprintFunc()
	var sb strings.Builder
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				sb.WriteString(add("+" + line))
			case diffmatchpatch.DiffDelete:
				sb.WriteString(del("-" + line))
			default:
				sb.WriteString(" " + line)
			}
		}
	}
	return sb.String()
}

func newSchemaCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the type's dictionary shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := o.mapper(cmd)
			if err != nil {
				return err
			}
			s, err := m.JSONSchema(propmapper.TypeID(o.typ))
			if err != nil {
				return err
			}
			b, err := gojson.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
