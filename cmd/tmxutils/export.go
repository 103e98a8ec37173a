package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eak1mov/go-libtmx/scene"
	"github.com/eak1mov/go-libtmx/tmx"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type exportCmd struct {
	importFlags
	inputPath  string
	outputPath string
	force      bool
}

func (c *exportCmd) Name() string     { return "export" }
func (c *exportCmd) Synopsis() string { return "import a map and store it in a scene database" }
func (c *exportCmd) Usage() string {
	return "tmxutils export -i <path> -o <path> [-f -config <path> -strict -j <n>]\n"
}
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input map file path")
	f.StringVar(&c.outputPath, "o", "", "Output database file path")
	f.BoolVar(&c.force, "f", false, "Overwrite the output file")
	c.importFlags.register(f)
}

// export writes m to a fresh database at outputPath.
func export(m *tmx.Map, outputPath string, force bool, imp *importer) error {
	if force {
		if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	writer, err := scene.NewWriter(outputPath,
		scene.WithLogger(imp.logger),
		scene.WithMetadata(imp.config.Metadata),
		scene.WithProgress(func(cells int) { bar.Add(cells) }))
	if err != nil {
		return err
	}

	err = writer.WriteMap(m)
	if err == nil {
		err = writer.Finalize()
	}
	bar.Finish()
	fmt.Println()

	return errors.Join(err, writer.Close())
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.inputPath == "" || c.outputPath == "" {
		log.Print(c.Usage())
		return subcommands.ExitUsageError
	}

	imp, err := c.importer()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	m, err := imp.importFile(c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if !m.Report.Clean() {
		log.Printf("%d warnings:\n%s", len(m.Report.Warnings), m.Report.String())
	}

	if err := export(m, c.outputPath, c.force, imp); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
