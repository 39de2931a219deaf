package sandbox

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/hooks"
	"github.com/agentcore/reactor/tools"
)

// Environment is the sandbox's restricted execution context: a read-only
// view of injected variables, plus the tool registry each call routes
// through (so a tool invocation inside a code action emits the same
// ToolCallRequested/ToolCallCompleted events as tool-calling mode).
type Environment struct {
	Variables map[string]any
	Tools     *tools.Registry
	Bus       *hooks.Bus
	RunID     string
}

// interpreter walks a restricted statement grammar:
//
//	name = tool_name(kw: expr, ...)
//	tool_name(kw: expr, ...)
//	print(expr)
//
// Keyword arguments accept both "kw: expr" (the code-action DSL's native
// form) and "kw=expr".
//
// Expressions are identifiers, string/number/bool/None literals, or nested
// calls. This is intentionally far smaller than a general-purpose language:
// the sandbox only needs to express "call a tool, bind its result, call
// another tool, return final_answer(...)".
type interpreter struct {
	env        *Environment
	vars       map[string]any
	logs       strings.Builder
	operations int
	maxOps     int
}

func newInterpreter(env *Environment, maxOps int) *interpreter {
	vars := make(map[string]any, len(env.Variables))
	for k, v := range env.Variables {
		vars[k] = v
	}
	return &interpreter{env: env, vars: vars, maxOps: maxOps}
}

func (in *interpreter) tick() error {
	in.operations++
	if in.operations > in.maxOps {
		return operationBudgetExceeded()
	}
	return nil
}

// run executes every statement in order. A final_answer call unwinds via
// finalAnswerSignal, which run translates into a non-error return so the
// caller can distinguish it from a genuine execution error.
func (in *interpreter) run(ctx context.Context, code string) (value any, finalAnswer bool, err error) {
	for _, raw := range strings.Split(code, "\n") {
		if err := ctx.Err(); err != nil {
			return nil, false, agenterr.Wrap(agenterr.KindTimeout, "sandbox: execution deadline exceeded", err)
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "require(") {
			continue
		}
		if err := in.tick(); err != nil {
			return nil, false, err
		}
		v, err := in.execStatement(ctx, line)
		if err != nil {
			if sig, ok := err.(finalAnswerSignal); ok {
				return sig.value, true, nil
			}
			return nil, false, err
		}
		value = v
	}
	return value, false, nil
}

func (in *interpreter) execStatement(ctx context.Context, line string) (any, error) {
	if name, rest, ok := strings.Cut(line, "="); ok && !strings.Contains(strings.TrimSpace(name), "(") {
		name = strings.TrimSpace(name)
		v, err := in.evalExpr(ctx, strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		in.vars[name] = v
		return v, nil
	}
	return in.evalExpr(ctx, line)
}

// evalExpr evaluates a single expression: a call, a literal, or a variable
// reference.
func (in *interpreter) evalExpr(ctx context.Context, expr string) (any, error) {
	expr = strings.TrimSpace(expr)
	if name, argsSrc, ok := parseCall(expr); ok {
		if err := in.tick(); err != nil {
			return nil, err
		}
		args, err := in.evalArgs(ctx, argsSrc)
		if err != nil {
			return nil, err
		}
		return in.callFunction(ctx, name, args)
	}
	return in.evalLiteralOrVar(expr)
}

func (in *interpreter) callFunction(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "print":
		in.logs.WriteString(fmt.Sprint(args["_0"]) + "\n")
		return nil, nil
	case tools.FinalAnswerToolName:
		var x any
		if v, ok := args["_0"]; ok {
			x = v
		} else {
			x = args["answer"]
		}
		return nil, finalAnswerSignal{value: x}
	default:
		if in.env.Tools == nil {
			return nil, agenterr.Newf(agenterr.KindToolExecution, "sandbox: no tool registry bound, cannot call %q", name)
		}
		bus := in.env.Bus
		if bus == nil {
			bus = hooks.NewBus()
		}
		inv, err := tools.Invoke(ctx, in.env.Tools, bus, in.env.RunID, name, args, tools.InvokeOptions{})
		if err != nil {
			return nil, err
		}
		return inv.Value, nil
	}
}

// evalArgs parses a call's argument list: positional arguments bind under
// synthetic keys "_0", "_1", ...; keyword arguments bind by name using
// either "name: expr" or "name=expr".
func (in *interpreter) evalArgs(ctx context.Context, src string) (map[string]any, error) {
	out := map[string]any{}
	parts := splitTopLevel(src, ',')
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if k, v, ok := keywordArg(part); ok {
			val, err := in.evalExpr(ctx, v)
			if err != nil {
				return nil, err
			}
			out[k] = val
			continue
		}
		val, err := in.evalExpr(ctx, part)
		if err != nil {
			return nil, err
		}
		out[fmt.Sprintf("_%d", i)] = val
	}
	return out, nil
}

// keywordArg splits "name: expr" or "name=expr" into its binding. ok is
// false when part is not a keyword argument (the name side must be a bare
// identifier, so a quoted positional string containing ':' or '=' never
// matches).
func keywordArg(part string) (key, expr string, ok bool) {
	for _, sep := range []string{":", "="} {
		if k, v, found := strings.Cut(part, sep); found && isIdent(strings.TrimSpace(k)) {
			return strings.TrimSpace(k), strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

func (in *interpreter) evalLiteralOrVar(tok string) (any, error) {
	switch tok {
	case "None", "null", "nil":
		return nil, nil
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	}
	if len(tok) >= 2 && (tok[0] == '"' || tok[0] == '\'') && tok[len(tok)-1] == tok[0] {
		return tok[1 : len(tok)-1], nil
	}
	if n, err := strconv.ParseFloat(tok, 64); err == nil {
		return n, nil
	}
	if isIdent(tok) {
		if v, ok := in.vars[tok]; ok {
			return v, nil
		}
		return nil, agenterr.Newf(agenterr.KindInterpreter, "sandbox: undefined variable %q", tok)
	}
	return nil, agenterr.Newf(agenterr.KindInterpreter, "sandbox: cannot evaluate expression %q", tok)
}

// parseCall splits "name(args)" into name and the raw argument source. ok is
// false when expr is not a call expression.
func parseCall(expr string) (name, argsSrc string, ok bool) {
	if !strings.HasSuffix(expr, ")") {
		return "", "", false
	}
	open := strings.Index(expr, "(")
	if open < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(expr[:open])
	if !isIdent(name) {
		return "", "", false
	}
	return name, expr[open+1 : len(expr)-1], true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// splitTopLevel splits s on sep, ignoring occurrences inside nested
// parentheses or quotes.
func splitTopLevel(s string, sep rune) []string {
	var out []string
	depth := 0
	var quote rune
	start := 0
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
