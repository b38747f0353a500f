package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/crime-hotspot-service/internal/dataset"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check dataset integrity",
	Long:  "Checks coordinate coverage, severity labels, row integrity, and location coverage for every district in the crime records.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := loadDataset()
		if err != nil {
			return err
		}
		if !runValidation(cmd.OutOrStdout(), data) {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(validateCmd) }

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// runValidation prints a phase summary followed by detailed errors and
// reports whether every phase passed.
func runValidation(w io.Writer, data *dataset.Dataset) bool {
	phases := []*phase{
		validateCoordinates(data),
		validateSeverityLabels(data),
		validateRowIntegrity(data),
		validateLocationCoverage(data),
	}

	fmt.Fprintln(w, "=== Crime Dataset Integrity Validation ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-30s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d read, %d loaded, %d dropped, %d without coordinates\n",
		data.Stats.Rows, data.Stats.Loaded, data.Stats.Dropped(), data.Stats.MissingGeo)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return false
}

func validateCoordinates(data *dataset.Dataset) *phase {
	p := &phase{name: "Coordinate coverage"}
	for _, rec := range data.Records {
		if !rec.HasValidGeo() {
			p.errorf("record %s (%s, %s): missing or invalid coordinates", rec.ID, rec.Area, rec.District)
		}
	}
	return p
}

func validateSeverityLabels(data *dataset.Dataset) *phase {
	p := &phase{name: "Severity labels"}
	if n := data.Stats.UnknownSeverity; n > 0 {
		p.errorf("%d rows dropped for unrecognised severity labels", n)
	}
	for _, rec := range data.Records {
		if rec.Severity == "" {
			p.errorf("record %s (%s): no severity label", rec.ID, rec.Area)
		}
	}
	return p
}

func validateRowIntegrity(data *dataset.Dataset) *phase {
	p := &phase{name: "Row integrity"}
	if n := data.Stats.MalformedNumbers; n > 0 {
		p.errorf("%d rows dropped for a malformed year or crime count", n)
	}
	if len(data.Records) == 0 {
		p.errorf("no crime records loaded")
	}
	return p
}

func validateLocationCoverage(data *dataset.Dataset) *phase {
	p := &phase{name: "Location coverage"}
	for _, d := range data.Districts() {
		if _, err := data.Locations.Lookup(d.State, d.District); err != nil {
			p.errorf("district %s, %s: no entry in the location table", d.District, d.State)
		}
	}
	return p
}
