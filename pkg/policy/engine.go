package policy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/models"
)

// Engine evaluates CEL rules over a finished analysis
type Engine struct {
	env *cel.Env
}

// NewEngine creates the CEL environment. Rules see one variable, input,
// holding the analysis as a JSON-shaped map.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Engine{env: env}, nil
}

// Evaluate runs every rule and returns one result per rule, in order.
// A rule that fails to compile or evaluate is reported as failed with the
// CEL error text.
func (e *Engine) Evaluate(rules []models.PolicyRule, analysis *models.Analysis) ([]models.PolicyResult, error) {
	input, err := InputFor(analysis)
	if err != nil {
		return nil, err
	}

	results := make([]models.PolicyResult, 0, len(rules))
	for _, rule := range rules {
		results = append(results, e.evaluateRule(rule, input))
	}
	return results, nil
}

func (e *Engine) evaluateRule(rule models.PolicyRule, input map[string]interface{}) models.PolicyResult {
	failed := func(msg string) models.PolicyResult {
		return models.PolicyResult{RuleName: rule.Name, Passed: false, FailureMsg: msg}
	}

	ast, issues := e.env.Compile(rule.Expr)
	if issues != nil && issues.Err() != nil {
		return failed(fmt.Sprintf("CEL compile error: %v", issues.Err()))
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return failed(fmt.Sprintf("CEL program error: %v", err))
	}

	out, _, err := prg.Eval(map[string]interface{}{"input": input})
	if err != nil {
		return failed(fmt.Sprintf("CEL evaluation error: %v", err))
	}

	passed, ok := out.Value().(bool)
	if !ok {
		return failed(fmt.Sprintf("rule expression must return boolean, got %T", out.Value()))
	}

	result := models.PolicyResult{RuleName: rule.Name, Passed: passed}
	if !passed {
		result.FailureMsg = rule.FailureMsg
	}
	return result
}

// Validate compiles every rule without evaluating it
func (e *Engine) Validate(rules []models.PolicyRule) error {
	var problems []string
	for _, rule := range rules {
		if strings.TrimSpace(rule.Name) == "" {
			problems = append(problems, fmt.Sprintf("rule with expression %q has no name", rule.Expr))
			continue
		}
		if _, issues := e.env.Compile(rule.Expr); issues != nil && issues.Err() != nil {
			problems = append(problems, fmt.Sprintf("rule %q: %v", rule.Name, issues.Err()))
		}
	}
	if len(problems) > 0 {
		return errors.NewConfigurationError(errors.CodePolicyCompile, "policy validation failed").
			WithContext("problems", strings.Join(problems, "; "))
	}
	return nil
}

// Passed reports whether every result passed
func Passed(results []models.PolicyResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// InputFor builds the map view rules evaluate against. Field names follow
// the JSON tags of the analysis records; raw tool output and previous
// policy results are left out.
func InputFor(analysis *models.Analysis) (map[string]interface{}, error) {
	if analysis == nil {
		return map[string]interface{}{}, nil
	}
	view := *analysis
	view.Raw = nil
	view.Policy = nil

	data, err := json.Marshal(&view)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeParsing, errors.CodePolicyEval, "failed to encode analysis for policy evaluation")
	}
	var input map[string]interface{}
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeParsing, errors.CodePolicyEval, "failed to decode analysis for policy evaluation")
	}
	if _, ok := input["compliance"]; !ok {
		input["compliance"] = map[string]interface{}{}
	}
	return input, nil
}
