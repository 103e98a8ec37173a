package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"
)

type validateCmd struct {
	importFlags
}

func (c *validateCmd) Name() string     { return "validate" }
func (c *validateCmd) Synopsis() string { return "import maps and report every problem found" }
func (c *validateCmd) Usage() string {
	return "tmxutils validate [-config <path> -strict -j <n>] <path>...\n"
}
func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	c.importFlags.register(f)
}

func (c *validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		log.Print(c.Usage())
		return subcommands.ExitUsageError
	}

	imp, err := c.importer()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	for _, filePath := range f.Args() {
		m, err := imp.importFile(filePath)
		switch {
		case err != nil:
			fmt.Printf("%s: FAIL: %v\n", filePath, err)
			status = subcommands.ExitFailure
		case !m.Report.Clean():
			fmt.Printf("%s: %d warnings\n%s\n", filePath, len(m.Report.Warnings), m.Report.String())
		default:
			fmt.Printf("%s: ok\n", filePath)
		}
	}
	return status
}
