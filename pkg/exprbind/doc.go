/*
Package exprbind parses binding expressions and keeps their targets in sync
with the values they read.

# Overview

An expression such as `user.firstName + ' ' + user.lastName | upper` is
parsed once into a tree (package expr). Binding it evaluates the tree
against a scope, writes the result to a target property, and subscribes to
every property the evaluation touched (package binding). Writes to those
properties are coalesced per microtask batch (package observe) and, when
the host drains the batch, the binding re-evaluates and resubscribes to
whatever the new evaluation read.

# Basic Usage

	engine, err := exprbind.New()
	if err != nil {
	    log.Fatal(err)
	}

	person := observe.NewObjectFrom(map[string]any{"first": "Ada", "last": "Lovelace"})
	label := observe.NewObject()

	b, err := engine.NewBinding("first + ' ' + last", label, "text", binding.ToView)
	if err != nil {
	    log.Fatal(err)
	}
	if err := b.Bind(expr.NewScope(person)); err != nil {
	    log.Fatal(err)
	}

	person.Set("first", "Augusta")
	_ = engine.Flush()
	fmt.Println(label.Get("text")) // Augusta Lovelace

# Scheduling

The engine runs on one logical thread. Change notifications wait in the
microtask queue until Flush; dirty checking and deferred binding connects
wait for FlushFrame. A host with its own loop calls these directly. Others
call Run in a dedicated goroutine and hand mutations to it with Post.

# Resources

Value converters (`| name:arg`) and binding behaviors (`& name:arg`) are
looked up by name in the engine's resource registry. The mode behaviors
and `& signal:'name'` are registered by default. Signal re-evaluates every
binding whose converter or signal behavior lists the name.

# Configuration

	settings, err := config.Load("exprbind.yaml")
	engine, err := exprbind.NewFromSettings(settings, exprbind.WithMetrics(true))

# Observability

WithMetrics and WithTracing enable OpenTelemetry instruments and spans for
microtask flushes, connect-queue frames, signals and parse-cache hits.
Logging goes through log/slog.
*/
package exprbind
