package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gogpu/bindkit/gpucore"
	"github.com/gogpu/bindkit/recipe"
	"github.com/gogpu/bindkit/reserve"
	"github.com/gogpu/bindkit/shader"
)

var errUnknownCatalog = errors.New("unknown catalog")

func loadCatalog(name, file string) (*reserve.Catalog, error) {
	if file != "" {
		return reserve.LoadCatalog(file)
	}
	switch name {
	case "direct":
		return reserve.DirectCatalog(), nil
	case "bindless":
		return reserve.BindlessCatalog(), nil
	case "full":
		return reserve.FullCatalog(), nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownCatalog, name)
	}
}

// inspect writes the resolution, the layouts and a recipe dry run on ctx.
func inspect(w io.Writer, ctx gpucore.Context, catalog *reserve.Catalog, results []shader.CompilationResult) error {
	resolver := reserve.NewResolver(catalog)
	fmt.Fprintf(w, "catalog: %s, %d reserved names\n", catalog.Variant(), catalog.Len())

	for _, r := range results {
		res := resolver.Resolve(r)
		fmt.Fprintf(w, "\n%s %s: %d variables, %d reserved", r.Stage, r.EntryPoint, res.Len(), res.Reserved())
		if r.Stage == gpucore.ShaderStageCompute {
			fmt.Fprintf(w, ", workgroup %v", r.Workgroup)
		}
		if len(r.SPIRV) > 0 {
			fmt.Fprintf(w, ", %d SPIR-V words", len(r.SPIRV))
		}
		fmt.Fprintln(w)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  NAME\tSET\tBINDING\tKIND\tCOUNT\tRESERVED")
		for i, v := range res.Results {
			count := r.Variables[i].Binding.Count
			if !v.Exists {
				fmt.Fprintf(tw, "  %s\t-\t-\t-\t%d\tno\n", v.Name, count)
				continue
			}
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%s\t%d\tyes\n", v.Name, v.Set, v.Binding.Binding, v.Binding.Type, count)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	layouts, err := resolver.Layouts(results...)
	if err != nil {
		fmt.Fprintf(w, "\nwarning: %v\n", err)
	}
	fmt.Fprintf(w, "\nreserved layouts: %d sets\n", layouts.Len())
	for _, set := range layouts.Sets() {
		l, _ := layouts.Layout(set)
		fmt.Fprintf(w, "  %s:", l.Label)
		for _, s := range l.Stages {
			fmt.Fprintf(w, " %s[%s]", s.Stage, describe(s.Variables))
		}
		fmt.Fprintln(w)
	}

	return dryRun(w, ctx, catalog, results)
}

// dryRun builds the registry and recipe book on ctx and releases them
// again.
func dryRun(w io.Writer, ctx gpucore.Context, catalog *reserve.Catalog, results []shader.CompilationResult) error {
	reg, err := reserve.New(ctx, catalog)
	if err != nil {
		if errors.Is(err, reserve.ErrUnknownReserved) {
			fmt.Fprintf(w, "\ndry run skipped: %v\n", err)
			return nil
		}
		return err
	}
	defer reg.Destroy(ctx)

	book, err := recipe.NewBook(ctx, reg, results...)
	if err != nil {
		return err
	}
	defer book.Destroy(ctx)

	fmt.Fprintln(w, "\nrecipes:")
	for _, r := range book.BindGroups() {
		fmt.Fprintf(w, "  group set %d: %s%s\n", r.Set(), r.State(), missing(r.Missing()))
	}
	for _, r := range book.BindTables() {
		fmt.Fprintf(w, "  table set %d: %s%s\n", r.Set(), r.State(), missing(r.Missing()))
	}
	return nil
}

func describe(vars []gpucore.BindGroupVariable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("%d:%s", v.Binding, v.Type)
		if v.Count > 1 {
			parts[i] += fmt.Sprintf("x%d", v.Count)
		}
	}
	return strings.Join(parts, " ")
}

func missing(bindings []uint32) string {
	if len(bindings) == 0 {
		return ""
	}
	return fmt.Sprintf(" (caller supplies bindings %v)", bindings)
}
