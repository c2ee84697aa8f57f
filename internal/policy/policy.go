// Package policy applies an optional, user-supplied Rego module to the
// detector's Race Records as a pure post-processing filter: it never
// changes which records the detector computed, only marks some of them
// Suppressed. With no policy file configured, every record passes through
// unsuppressed.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

// defaultPackage is the Rego package every policy module must declare.
// The query Load prepares looks up data.vracer.policy.allow.
const defaultPackage = "vracer.policy"

// Engine evaluates a compiled Rego module against Race Records in-process,
// via github.com/open-policy-agent/opa/v1/rego. Unlike the teacher's
// exec.Command-based engine, VRacer has no sibling binary to shell out to,
// so the same OPA dependency is kept and rewired to its native Go
// embedding API.
type Engine struct {
	query rego.PreparedEvalQuery
}

// Load compiles the Rego module at path. The module must declare
// `package vracer.policy` and a rule named `allow` that is `false` for any
// input record that should be suppressed; `allow` defaults to true for any
// record the policy does not mention.
func Load(path string) (*Engine, error) {
	ctx := context.Background()
	r := rego.New(
		rego.Query("data.vracer.policy.allow"),
		rego.Load([]string{path}, nil),
	)
	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compiling policy %s: %w", path, err)
	}
	return &Engine{query: query}, nil
}

// recordInput is the JSON shape a Rego rule sees as `input`.
type recordInput struct {
	Kind     string `json:"kind"`
	Signal   string `json:"signal"`
	ModuleID string `json:"module"`
	AnchorA  string `json:"anchor_a"`
	AnchorB  string `json:"anchor_b"`
}

func toRecordInput(r ir.RaceRecord) recordInput {
	return recordInput{
		Kind:     r.Kind.String(),
		Signal:   r.TargetSignal,
		ModuleID: r.ModuleName,
		AnchorA:  r.AnchorA.Label,
		AnchorB:  r.AnchorB.Label,
	}
}

// Apply evaluates the policy against each record in records and sets
// Suppressed/SuppressedBy in place. Records are never removed. A record
// the policy does not explicitly waive keeps Suppressed == false.
func (e *Engine) Apply(records []ir.RaceRecord) error {
	ctx := context.Background()
	for i := range records {
		input := toRecordInput(records[i])
		results, err := e.query.Eval(ctx, rego.EvalInput(input))
		if err != nil {
			return fmt.Errorf("evaluating policy for %s/%s: %w", input.Kind, input.Signal, err)
		}
		if len(results) == 0 || len(results[0].Expressions) == 0 {
			continue
		}
		allow, ok := results[0].Expressions[0].Value.(bool)
		if !ok {
			return fmt.Errorf("policy allow rule for %s/%s did not evaluate to a boolean", input.Kind, input.Signal)
		}
		if !allow {
			records[i].Suppressed = true
			records[i].SuppressedBy = defaultPackage
		}
	}
	return nil
}
