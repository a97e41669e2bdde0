package analysis

import (
	"strings"

	"github.com/pgls/pgls/span"
)

// FunctionArgNamesProvider annotates each argument of a cataloged function
// call with the schema's parameter name and type, the way an IDE shows
// "name:" before positional call arguments (spec §4.7 pseudo-category
// "inlayHints"; dropped-feature supplement grounded on
// original_source/crates/pg_inlay_hints/src/functions_args.rs's
// FunctionArgHint, adapted from a tagged-node AST walk to locating function
// calls in the statement's raw text since this repository's StrictStatement
// DTO doesn't retain a full expression tree).
type FunctionArgNamesProvider struct{}

func (FunctionArgNamesProvider) Meta() Meta {
	return Meta{
		Key:     RuleKey{Category: CategoryInlayHints, Group: "schema", Name: "functionArgNames"},
		Version: "1.0.0",
		Docs:    "Annotates function call arguments with their catalog parameter names and types.",
	}
}

func (p FunctionArgNamesProvider) Run(ctx RuleContext) []Signal {
	stmt := ctx.Parse.Strict
	if stmt == nil || ctx.Schema == nil {
		return nil
	}
	var signals []Signal
	for _, call := range findFuncCalls(stmt.RawSQL) {
		fn, ok := ctx.Schema.FindFunction("", call.name)
		if !ok {
			continue
		}
		for i, arg := range call.args {
			if i >= len(fn.ArgType) {
				break
			}
			schemaArg := fn.ArgType[i]
			label := schemaArg.Type
			if schemaArg.Name != "" {
				label = schemaArg.Name + " => " + schemaArg.Type
			}
			sp := arg.span
			signals = append(signals, Signal{
				Span:      &sp,
				InlayHint: &InlayHint{Label: label},
			})
		}
	}
	return signals
}

type funcCallRef struct {
	name string
	args []funcArgRef
}

type funcArgRef struct {
	span span.Range
}

// findFuncCalls locates `ident(arg, arg, ...)` call shapes in raw SQL text
// by balanced-paren scanning, mirroring the splitter's own opaque-paren
// handling rather than pulling in a second expression parser.
func findFuncCalls(text string) []funcCallRef {
	var calls []funcCallRef
	for i := 0; i < len(text); i++ {
		if !isIdentStartByte(text[i]) {
			continue
		}
		start := i
		for i < len(text) && isIdentByte(text[i]) {
			i++
		}
		name := text[start:i]
		if i >= len(text) || text[i] != '(' {
			i--
			continue
		}
		argsStart := i + 1
		depth := 1
		j := argsStart
		for j < len(text) && depth > 0 {
			switch text[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				break
			}
			j++
		}
		if depth != 0 {
			i--
			continue
		}
		inner := text[argsStart:j]
		calls = append(calls, funcCallRef{name: name, args: splitArgs(inner, argsStart)})
		i = j
	}
	return calls
}

func splitArgs(inner string, base int) []funcArgRef {
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	var args []funcArgRef
	depth := 0
	argStart := 0
	for i := 0; i <= len(inner); i++ {
		atEnd := i == len(inner)
		var c byte
		if !atEnd {
			c = inner[i]
		}
		switch {
		case !atEnd && c == '(':
			depth++
		case !atEnd && c == ')':
			depth--
		case atEnd || (c == ',' && depth == 0):
			trimmed := strings.TrimLeft(inner[argStart:i], " \t\n")
			leadingWS := len(inner[argStart:i]) - len(trimmed)
			argEnd := base + i
			argBegin := base + argStart + leadingWS
			if argEnd < argBegin {
				argEnd = argBegin
			}
			args = append(args, funcArgRef{span: span.New(argBegin, argEnd)})
			argStart = i + 1
		}
	}
	return args
}

func isIdentStartByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStartByte(c) || (c >= '0' && c <= '9')
}
