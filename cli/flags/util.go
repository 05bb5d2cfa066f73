package flags

import (
	"strings"

	"github.com/urfave/cli"
)

func eachName(longName string, fn func(string)) {
	parts := strings.Split(longName, ",")
	for _, name := range parts {
		name = strings.Trim(name, " ")
		fn(name)
	}
}

// MarkRequired marks flags with specified names as required. Flags are
// matched by their long (first) name.
func MarkRequired(flagSet []cli.Flag, names ...string) []cli.Flag {
	updated := make([]cli.Flag, 0, len(flagSet))
	for _, flag := range flagSet {
		long, _, _ := strings.Cut(flag.GetName(), ",")
		for _, n := range names {
			if n == long {
				switch f := (flag).(type) {
				case cli.StringFlag:
					f.Required = true
					flag = f
				case cli.IntFlag:
					f.Required = true
					flag = f
				case cli.BoolFlag:
					f.Required = true
					flag = f
				case cli.Uint64Flag:
					f.Required = true
					flag = f
				case AddressFlag:
					f.Required = true
					flag = f
				}
				break
			}
		}
		updated = append(updated, flag)
	}
	return updated
}
