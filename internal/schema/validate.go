package schema

import (
	"fmt"
	"strings"
)

// Validate reports every problem in fields as a human-readable message.
//
// Only an empty field list blocks generation. Missing names or types and duplicate
// names are advisory: generation still runs and the engines fill those columns with
// placeholder values.
func Validate(fields []Field) []string {
	var errs []string

	if len(fields) == 0 {
		errs = append(errs, "at least one field is required")
	}

	counts := make(map[string]int)
	var order []string
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fmt.Sprintf("field %d: name is required", i+1))
		} else {
			if counts[f.Name] == 0 {
				order = append(order, f.Name)
			}
			counts[f.Name]++
		}
		if strings.TrimSpace(f.TypeID) == "" {
			errs = append(errs, fmt.Sprintf("field %d: type is required", i+1))
		}
	}

	for _, name := range order {
		if counts[name] > 1 {
			errs = append(errs, fmt.Sprintf("duplicate field name: %q", name))
		}
	}

	return errs
}
