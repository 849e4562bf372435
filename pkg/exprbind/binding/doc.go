/*
Package binding ties parsed expressions to target properties and keeps
them in sync through the observer locator.

# Bindings

A Binding evaluates its source expression against a scope and writes the
result to target[targetProperty]. Depending on its Mode it then:

  - OneTime: stops there.
  - ToView: connects to every property the expression read, re-evaluating
    when any of them changes. The initial connect goes through the
    ConnectQueue when the Host has one.
  - FromView: observes the target and assigns changes back through the
    expression.
  - TwoWay: does both.

Each re-evaluation is also a new connect pass. Observers the pass no longer
touches are unsubscribed, so `flag ? a : b` only ever observes the branch
it took.

	host := &binding.Host{Locator: locator, Signals: signals, Lookups: registry}
	b := binding.New(host, expr.MustParse("first + ' ' + last"), label, "text", binding.ToView)
	if err := b.Bind(expr.NewScope(person)); err != nil {
	    return err
	}

# Actions

An ActionBinding installs a Handler on its target and evaluates its
expression each time the handler is called, with the argument available
as $event:

	a := binding.NewAction(host, expr.MustParse("save($event)"), button, "onClick")

# Behaviors

RegisterDefaults adds the mode behaviors (oneTime, toView, oneWay,
fromView, twoWay) and the signal behavior, which re-evaluates a binding
whenever a named signal is sent:

	binding.RegisterDefaults(registry.RegisterBindingBehavior)
	// "now | timeAgo & signal:'tick'"
*/
package binding
