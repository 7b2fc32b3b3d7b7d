// catalogcheck lints a candidate-state catalog file before deployment:
// structural validity, compile warnings, and template references that no
// known template body can serve. It exits non-zero when the catalog would
// not load or references unknown templates.
//
// Usage: catalogcheck [path/to/catalog.yaml]
//
// Without an argument it checks the embedded default catalog.
package main

import (
	"fmt"
	"os"

	"examdesk_backend/internal/stateengine/catalog"
	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/internal/stateengine/templates"
	"examdesk_backend/platform/validator"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "catalogcheck:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	val := validator.New()

	var (
		cat    *catalog.Catalog
		source string
		err    error
	)
	if len(args) > 0 {
		source = args[0]
		cat, err = catalog.LoadFile(source, val)
	} else {
		source = "embedded default"
		cat, err = catalog.LoadDefault(val)
	}
	if err != nil {
		return err
	}

	fmt.Printf("catalog %s: version %d, %d states\n", source, cat.Version, len(cat.States))

	for _, warn := range cat.Warnings {
		fmt.Println("warning:", warn)
	}

	known := make(map[string]bool)
	for _, name := range templates.Names() {
		known[name] = true
	}

	var missing int
	for _, state := range cat.States {
		tpl := state.Response.Template
		if tpl == "" {
			if state.WorkflowAction == domain.ActionRespond {
				fmt.Printf("warning: state %q responds without a template\n", state.ID)
			}
			continue
		}
		if !known[tpl] {
			fmt.Printf("error: state %q references unknown template %q\n", state.ID, tpl)
			missing++
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d unknown template reference(s)", missing)
	}
	if len(cat.Warnings) > 0 {
		fmt.Printf("ok with %d warning(s)\n", len(cat.Warnings))
		return nil
	}
	fmt.Println("ok")
	return nil
}
