// Package flagx supports the two-pass flag parsing used by the config
// loaders: the config-file path is extracted first, then the full flag set is
// parsed over the values the file provided.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the arguments belonging to the flags named in keep,
// in their original order. A flag may appear as "-f value" or "-f=value";
// a dash-prefixed token following an allowed flag is treated as the next
// flag, not as its value. Everything else is dropped, which lets a package
// parse its own flags without tripping over flags it does not define.
func FilterArgs(args []string, keep []string) []string {
	keepSet := make(map[string]struct{}, len(keep))
	for _, f := range keep {
		keepSet[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if _, ok := keepSet[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		if _, ok := keepSet[arg]; ok {
			out = append(out, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				out = append(out, args[i+1])
				i++
			}
		}
	}
	return out
}

// JsonConfigFlags returns the config-file path given via -c or -config, or ""
// when neither is present. Other command-line flags are ignored.
func JsonConfigFlags() string {
	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	var path string
	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(args)

	return path
}
