// Package flagx lets several configuration layers share one command line:
// each layer keeps only the flags it defines and parses those.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the arguments in args that belong to one of the flags
// in allowed, keeping their values. A flag matches in both its "-name" and
// "--name" spellings, as the flag package accepts either.
//
// Supported formats:
//
//	-c conf.json
//	--config=conf.json
//
// A separate value is taken from the next argument unless that argument
// starts with "-". The result is never nil.
func FilterArgs(args []string, allowed []string) []string {
	names := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		names[flagName(f)] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		if _, ok := names[flagName(name)]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if hasValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// Names returns the flags defined on fs in "-name" form, ready for FilterArgs.
func Names(fs *flag.FlagSet) []string {
	var names []string
	fs.VisitAll(func(f *flag.Flag) {
		names = append(names, "-"+f.Name)
	})
	return names
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" when neither is present. When both appear the last one wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, Names(fs)))

	return path
}

func flagName(arg string) string {
	return strings.TrimLeft(arg, "-")
}
