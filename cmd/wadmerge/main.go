// Command wadmerge is the CLI entry point around internal/merge: it
// parses arguments, resolves the optional MergeProfile, drives the
// interactive overwrite prompt, and writes the merged archive plus an
// optional duplicate report.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/GitExl/WADMerge/internal/config"
	"github.com/GitExl/WADMerge/internal/merge"
	"github.com/GitExl/WADMerge/internal/wad"
)

const licenseText = `wadmerge

Copyright the wadmerge contributors.

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to
deal in the Software without restriction, including without limitation the
rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
sell copies of the Software, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND.
`

func main() {
	app := &cli.App{
		Name:  "wadmerge",
		Usage: "merge Doom-family WAD archives",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "merged.wad", Usage: "output archive path"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"w"}, Usage: "suppress the overwrite prompt"},
			&cli.BoolFlag{Name: "filter-patches", Value: true, Usage: "prune the PP namespace against live patch names"},
			&cli.BoolFlag{Name: "merge-text", Value: true, Usage: "concatenate known text-format lumps"},
			&cli.BoolFlag{Name: "sort-ns", Value: true, Usage: "sort namespace contents by name"},
			&cli.BoolFlag{Name: "sort-maps", Value: true, Usage: "sort maps by name"},
			&cli.BoolFlag{Name: "sort-textures", Value: false, Usage: "sort textures by name"},
			&cli.BoolFlag{Name: "sort-text", Value: true, Usage: "sort merged text lumps by name"},
			&cli.BoolFlag{Name: "sort-loose", Value: false, Usage: "sort loose lumps by name"},
			&cli.StringFlag{Name: "config", Usage: "path to a MergeProfile TOML file"},
			&cli.StringFlag{Name: "report", Usage: "path to write the duplicate-conflict report"},
			&cli.BoolFlag{Name: "license", Aliases: []string{"l"}, Usage: "print license text and exit"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			fmt.Fprintln(os.Stderr, exitErr.Error())
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("license") {
		fmt.Print(licenseText)
		return nil
	}

	paths := c.Args().Slice()
	if len(paths) < 2 {
		return cli.Exit("wadmerge: at least 2 input archive paths are required", -1)
	}

	outputPath := c.String("output")
	if !c.Bool("overwrite") {
		if ok, err := confirmOverwrite(outputPath); err != nil {
			return cli.Exit(fmt.Sprintf("wadmerge: %s", err), -1)
		} else if !ok {
			return cli.Exit("wadmerge: aborted by user", -1)
		}
	}

	profile, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("wadmerge: %s", err), -2)
	}

	opts := merge.DefaultOptions()
	opts.FilterPatches = c.Bool("filter-patches")
	opts.MergeText = c.Bool("merge-text")
	opts.SortNamespaces = c.Bool("sort-ns")
	opts.SortMaps = c.Bool("sort-maps")
	opts.SortTextures = c.Bool("sort-textures")
	opts.SortText = c.Bool("sort-text")
	opts.SortLoose = c.Bool("sort-loose")
	opts.Logger = log.New(os.Stderr, "", 0)
	if profile != nil {
		opts.ExtraTextLumpNames = profile.ExtraTextLumpNames
		opts.ExtraNullTextures = profile.ExtraNullTextures
		opts.AliasOverrides = profile.AliasOverrides
	}

	m := merge.New(opts)
	for _, path := range paths {
		a, err := wad.Load(path)
		if err != nil {
			opts.Logger.Printf("skipping %s: %s", path, err)
			continue
		}
		if err := m.Add(a); err != nil {
			return cli.Exit(fmt.Sprintf("wadmerge: %s", err), -3)
		}
	}

	out := m.Build(outputPath)
	if err := out.WriteFile(outputPath); err != nil {
		return cli.Exit(fmt.Sprintf("wadmerge: %s", err), -4)
	}
	opts.Logger.Printf("wrote %s", outputPath)

	if reportPath := c.String("report"); reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("wadmerge: %s", err), -5)
		}
		defer f.Close()
		if err := m.WriteReport(f); err != nil {
			return cli.Exit(fmt.Sprintf("wadmerge: %s", err), -5)
		}
	}

	return nil
}

// confirmOverwrite prompts interactively when outputPath already
// exists, returning false if the user declines. A nonexistent
// destination needs no confirmation.
func confirmOverwrite(outputPath string) (bool, error) {
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return true, nil
	}

	fmt.Printf("%s already exists. Overwrite? [y/N] ", outputPath)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	switch line {
	case "y\n", "Y\n", "y\r\n", "Y\r\n":
		return true, nil
	default:
		return false, nil
	}
}
