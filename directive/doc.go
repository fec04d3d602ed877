// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package directive resolves deploy invocations into a normalized Directive.

# Resolution

Resolve takes the raw argument tokens and returns a Directive:

	d := directive.Resolve(os.Args[1:], nil)

The Directive has four fields:

  - Target: "" (default destination), "local", or "debug"
  - Environment: "development" (default), "production", or any free-form name
  - Flag: short-form flag code ("-l", "-d", "-p", "-y", or "")
  - Mode: "async" (default) or "blocking"

# Token rules

One left-to-right pass over the tokens:

	-b, --blocking            mode = blocking
	-l, -d                    legacy target flags (deprecated, still honored)
	-p, --skip-build          skip flag, normalized to "-p"
	-y, --skip-push           skip flag; the long form also normalizes to "-p"
	local, debug              first positional sets the target
	dev, development          first positional sets the environment
	prod, production          first positional sets the environment
	<anything else>           first positional sets a free-form environment

Only the first positional token is consulted; later ones are ignored.
Unknown flags are ignored so newer wrappers can pass extra flags through
without breaking older builds.

# Legacy flags

-l and -d predate the positional syntax. They resolve identically to
"deploy local" / "deploy debug" but log a deprecation warning through the
injected slog.Logger. Tests can pass a logger with a capturing handler to
assert on warnings without touching process streams.

# Guarantees

Resolve never fails. Every token sequence, including contradictory ones,
produces a Directive: target and environment are independent fields, so
"deploy production -l" targets local AND selects production.
*/
package directive
