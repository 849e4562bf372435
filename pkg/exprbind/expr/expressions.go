package expr

// Evaluate implements Expression.
//
// && and || short-circuit and yield an operand rather than a boolean.
// Equality, in and instanceof accept nullish operands; every other operator
// yields Null when an operand is nullish, except + and - which drop the
// nullish side.
func (e *Binary) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	left, err := e.Left.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}

	switch e.Operation {
	case "&&":
		if !IsTruthy(left) {
			return left, nil
		}
		return e.Right.Evaluate(scope, lookups, 0)
	case "||":
		if IsTruthy(left) {
			return left, nil
		}
		return e.Right.Evaluate(scope, lookups, 0)
	}

	right, err := e.Right.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}

	switch e.Operation {
	case "==", "!=", "===", "!==", "in", "instanceof":
		return Compare(left, right, e.Operation)
	case "+":
		return add(left, right), nil
	case "-":
		return subtract(left, right), nil
	}

	if IsNullish(left) || IsNullish(right) {
		return Null, nil
	}
	switch e.Operation {
	case "*", "/", "%":
		return arithmetic(e.Operation, left, right), nil
	case "<", ">", "<=", ">=":
		return Compare(left, right, e.Operation)
	}
	return nil, evalError(e, nil, "internal error [%s] not handled", e.Operation)
}

// Assign implements Expression.
func (e *Binary) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression. The right operand is connected only when
// evaluation would reach it.
func (e *Binary) Connect(binding Connector, scope *Scope) error {
	if err := e.Left.Connect(binding, scope); err != nil {
		return err
	}
	left, err := e.Left.Evaluate(scope, binding.LookupFunctions(), 0)
	if err != nil {
		return err
	}
	if (e.Operation == "&&" && !IsTruthy(left)) || (e.Operation == "||" && IsTruthy(left)) {
		return nil
	}
	return e.Right.Connect(binding, scope)
}

// Evaluate implements Expression.
func (e *Unary) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	v, err := e.Expression.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	switch e.Operation {
	case "!":
		return !IsTruthy(v), nil
	case "-":
		return -ToNumber(v), nil
	case "+":
		return ToNumber(v), nil
	case "typeof":
		return TypeOf(v), nil
	case "void":
		return nil, nil
	}
	return nil, evalError(e, nil, "internal error [%s] not handled", e.Operation)
}

// Assign implements Expression.
func (e *Unary) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression.
func (e *Unary) Connect(binding Connector, scope *Scope) error {
	return e.Expression.Connect(binding, scope)
}

// Evaluate implements Expression.
func (e *Conditional) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	cond, err := e.Condition.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	if IsTruthy(cond) {
		return e.Yes.Evaluate(scope, lookups, 0)
	}
	return e.No.Evaluate(scope, lookups, 0)
}

// Assign implements Expression.
func (e *Conditional) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression. Only the branch taken is connected.
func (e *Conditional) Connect(binding Connector, scope *Scope) error {
	if err := e.Condition.Connect(binding, scope); err != nil {
		return err
	}
	cond, err := e.Condition.Evaluate(scope, binding.LookupFunctions(), 0)
	if err != nil {
		return err
	}
	if IsTruthy(cond) {
		return e.Yes.Connect(binding, scope)
	}
	return e.No.Connect(binding, scope)
}

// Evaluate implements Expression.
func (e *Assign) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	v, err := e.Value.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	return e.Target.Assign(scope, v, lookups)
}

// Assign implements Expression. The value is written through both sides.
func (e *Assign) Assign(scope *Scope, value any, lookups LookupFunctions) (any, error) {
	if _, err := e.Value.Assign(scope, value, lookups); err != nil {
		return nil, err
	}
	return e.Target.Assign(scope, value, lookups)
}

// Connect implements Expression.
func (e *Assign) Connect(Connector, *Scope) error {
	return nil
}

