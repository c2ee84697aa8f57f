// Package validator is the contract guard between the detector's output
// and the optional policy stage. Without it, a field rename or type change
// in internal/ir would let malformed data reach the policy evaluator
// silently: a Rego rule referencing a renamed field just reads undefined
// and never fires. The validator makes that mismatch a loud, immediate
// error instead.
package validator

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

//go:embed schema.cue
var schemaFS embed.FS

//go:embed output_schema.cue
var outputSchemaFS embed.FS

// Validator checks a Design envelope against schema.cue's #Input
// definition.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a Validator backed by the embedded Design schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate checks that data (typically an ir.Design) conforms to #Input.
func (v *Validator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates raw JSON bytes directly against #Input.
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}

	inputDef := v.schema.LookupPath(cue.ParsePath("#Input"))
	if inputDef.Err() != nil {
		return fmt.Errorf("looking up #Input definition: %w", inputDef.Err())
	}

	unified := inputDef.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ValidationErrors returns every individual validation failure rather than
// just the first, for diagnostics.
func (v *Validator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	inputDef := v.schema.LookupPath(cue.ParsePath("#Input"))
	if inputDef.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", inputDef.Err())}
	}

	unified := inputDef.Unify(dataValue)
	err = unified.Validate()
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// OutputValidator checks a Race Record list against output_schema.cue's
// #LintOutput definition.
type OutputValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewOutputValidator creates an OutputValidator backed by the embedded
// output schema.
func NewOutputValidator() (*OutputValidator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := outputSchemaFS.ReadFile("output_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading output schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling output schema: %w", schema.Err())
	}

	return &OutputValidator{ctx: ctx, schema: schema}, nil
}

// recordsEnvelope is the JSON shape #LintOutput expects.
type recordsEnvelope struct {
	Records []ir.RaceRecord `json:"records"`
}

// Validate checks that records conforms to #LintOutput.
func (v *OutputValidator) Validate(records []ir.RaceRecord) error {
	jsonBytes, err := json.Marshal(recordsEnvelope{Records: records})
	if err != nil {
		return fmt.Errorf("marshaling output to JSON: %w", err)
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling output as CUE: %w", dataValue.Err())
	}

	outputDef := v.schema.LookupPath(cue.ParsePath("#LintOutput"))
	if outputDef.Err() != nil {
		return fmt.Errorf("looking up #LintOutput definition: %w", outputDef.Err())
	}

	unified := outputDef.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("output schema validation failed: %w", err)
	}
	return nil
}

// ValidateReport runs both schema gates: the Design envelope against
// #Input, then the Race Record list against #LintOutput. This is the
// single entry point internal/driver calls before the policy stage.
func ValidateReport(design ir.Design, records []ir.RaceRecord) error {
	dv, err := New()
	if err != nil {
		return err
	}
	if err := dv.Validate(design); err != nil {
		return fmt.Errorf("design envelope: %w", err)
	}

	ov, err := NewOutputValidator()
	if err != nil {
		return err
	}
	if err := ov.Validate(records); err != nil {
		return fmt.Errorf("race record list: %w", err)
	}
	return nil
}
