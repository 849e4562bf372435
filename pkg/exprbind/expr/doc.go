/*
Package expr parses and evaluates binding expressions.

# Overview

An expression is parsed once into an AST and then evaluated many times
against a Scope. Every node can also be assigned through (when it denotes a
location) and connected: Connect walks the same paths Evaluate would and
tells a binding which properties and collections the value depends on.

	parser := expr.NewParser()
	e, err := parser.Parse("user.firstName + ' ' + user.lastName")
	if err != nil {
	    return err
	}
	value, err := e.Evaluate(expr.NewScope(model), lookups, 0)

# Grammar

From loosest to tightest:

	expr & behavior:arg:arg       binding behavior
	expr | converter:arg:arg      value converter
	target = value                assignment (right-associative)
	cond ? yes : no               conditional
	||  &&                        logical, yield an operand
	==  !=  ===  !==              equality
	<  >  <=  >=  in  instanceof  relational
	+  -                          additive
	*  %  /                       multiplicative
	!  -  +  typeof  void         unary
	a.b  a[b]  a(b)  tag`t`       member, keyed, call, tagged template
	literals, $this, $parent, identifiers, (expr), [..], {..}, `..${x}..`

There are no statements. A semicolon is rejected, and so is any operator
not listed above.

# Scope

A Scope pairs a binding context (the object identifiers resolve against)
with an OverrideContext chain. $parent hops one override context up;
unprefixed identifiers resolve in the nearest frame that defines them.

# Values

Evaluation follows loose JavaScript semantics. nil is undefined and Null
is null. Numbers of any Go kind compare and add as float64, and results of
arithmetic are float64. Observable values from package observe (Object,
Array, Map, Set) are what object and array literals evaluate to.

# Errors

Parsing fails with *ParseError, carrying the input and column. Evaluation,
assignment and connection fail with *EvaluationError. Both wrap sentinels
such as ErrNotAssignable and ErrConverterNotFound for errors.Is.
*/
package expr
