package directive

import (
	"log/slog"
	"strings"
)

// Target values. An empty Target means "deploy to the default destination".
const (
	TargetLocal = "local"
	TargetDebug = "debug"
)

// Environment tiers. Anything outside these two passes through verbatim.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Invocation modes.
const (
	ModeAsync    = "async"
	ModeBlocking = "blocking"
)

// Directive is the normalized result of resolving a deploy invocation.
// It is constructed once per invocation and handed to whatever actually
// performs the deploy; resolution itself does no I/O.
type Directive struct {
	Target      string `json:"target"`
	Environment string `json:"environment"`
	Flag        string `json:"flag"`
	Mode        string `json:"mode"`
}

// Resolve scans tokens (the invocation's arguments, excluding the program
// name) left to right and produces a Directive. It is total: any token
// sequence resolves, unknown flags are ignored for forward compatibility.
//
// The legacy -l/-d flags still work but log a deprecation warning through
// log (nil means slog.Default()). The warning is the only side effect and
// never changes the result.
//
// Flag is one overloaded slot: target flags (-l, -d) and skip flags
// (-p, -y) share it, and the last token processed wins. Long skip forms
// reduce to their third character with "s" remapped to "p", so both
// --skip-build and --skip-push come out as "-p". Downstream scripts key
// off this exact behavior; do not "fix" it.
func Resolve(tokens []string, log *slog.Logger) Directive {
	if log == nil {
		log = slog.Default()
	}

	d := Directive{
		Environment: EnvDevelopment,
		Mode:        ModeAsync,
	}

	positionalSeen := false
	for _, tok := range tokens {
		switch tok {
		case "-b", "--blocking":
			d.Mode = ModeBlocking

		case "-l":
			d.Target = TargetLocal
			d.Flag = "-l"
			log.Warn("flag is deprecated", "flag", "-l", "use", "deploy local")

		case "-d":
			d.Target = TargetDebug
			d.Flag = "-d"
			log.Warn("flag is deprecated", "flag", "-d", "use", "deploy debug")

		case "-p", "-y", "--skip-build", "--skip-push":
			d.Flag = reduceSkipFlag(tok)

		default:
			if strings.HasPrefix(tok, "-") {
				// Unknown flag, ignore
				continue
			}
			if positionalSeen {
				// Only the first positional token counts
				continue
			}
			positionalSeen = true
			applyPositional(&d, tok)
		}
	}

	// Derive the flag from the target when no flag token set one
	if d.Flag == "" && d.Target != "" {
		switch d.Target {
		case TargetLocal:
			d.Flag = "-l"
		case TargetDebug:
			d.Flag = "-d"
		}
	}

	return d
}

// applyPositional interprets the first non-flag token. Targets and
// environments are independent: a positional target never resets the
// environment, and vice versa.
func applyPositional(d *Directive, tok string) {
	switch tok {
	case "local":
		d.Target = TargetLocal
		d.Flag = "-l"
	case "debug":
		d.Target = TargetDebug
		d.Flag = "-d"
	case "dev", "development":
		d.Environment = EnvDevelopment
	case "prod", "production":
		d.Environment = EnvProduction
	default:
		// Arbitrary environment names pass through unvalidated
		d.Environment = tok
	}
}

// reduceSkipFlag normalizes skip flags onto the shared flag slot. Short
// forms pass through; long forms keep only their third character, and a
// resulting "-s" becomes "-p".
func reduceSkipFlag(tok string) string {
	if !strings.HasPrefix(tok, "--") {
		return tok
	}
	c := tok[2]
	if c == 's' {
		c = 'p'
	}
	return "-" + string(c)
}
