package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"cellseg/config"
	"cellseg/internal/container"
	"cellseg/internal/logging"
)

const usageLine = "Usage: cellseg [options] [diameter]"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "cellseg",
		Usage:     "segment cells in every image of a directory tree",
		ArgsUsage: "[diameter]",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultConfigFile, Usage: "YAML config file"},
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input directory"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output directory"},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name (otsu for the built-in model, empty for the build default)"},
			&cli.StringFlag{Name: "model-dir", Usage: "directory with network files"},
			&cli.StringFlag{Name: "backend", Usage: "auto, cuda, opencl or cpu"},
			&cli.StringFlag{Name: "channel", Usage: "red, green, blue or gray"},
			&cli.StringFlag{Name: "overlay-suffix", Usage: "viz or overlay"},
			&cli.BoolFlag{Name: "normalize-overlay", Usage: "stretch overlay base image by percentiles"},
			&cli.BoolFlag{Name: "no-rois", Usage: "do not write ImageJ ROI archives"},
			&cli.StringFlag{Name: "log-file", Usage: "also write logs to this file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		OnUsageError: func(c *cli.Context, err error, _ bool) error {
			printUsage(c)
			return err
		},
		Action: run,
	}
}

func printUsage(c *cli.Context) {
	fmt.Fprintln(c.App.ErrWriter, usageLine)
	cli.HelpPrinter(c.App.ErrWriter, cli.AppHelpTemplate, c.App)
}

// parseDiameter читает необязательный позиционный аргумент. 0 означает, что он не задан.
func parseDiameter(c *cli.Context) (int, error) {
	if c.NArg() == 0 {
		return 0, nil
	}
	if c.NArg() > 1 {
		return 0, errors.Errorf("expected at most one argument, got %d", c.NArg())
	}
	arg := c.Args().First()
	d, err := strconv.Atoi(arg)
	if err != nil || d <= 0 {
		return 0, errors.Errorf("diameter must be a positive integer, got %q", arg)
	}
	return d, nil
}

func run(c *cli.Context) error {
	// аргументы проверяются до создания логгера и выходных файлов
	diameter, err := parseDiameter(c)
	if err != nil {
		printUsage(c)
		return err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if diameter > 0 {
		cfg.Segmentation.Diameter = diameter
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger, cleanup, err := logging.New(cfg.Logging.Debug, cfg.Logging.File)
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer cleanup()

	ctr, err := container.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := ctr.Close(); err != nil {
			logger.Warnf("Failed to release model: %v", err)
		}
	}()

	logger.Infof("Input: %s, output: %s, diameter: %d", cfg.InputDir, cfg.OutputDir, cfg.Segmentation.Diameter)
	if _, err := ctr.Batch.Run(c.Context); err != nil {
		return err
	}
	return nil
}

// applyFlags переносит явно заданные флаги поверх конфигурации.
func applyFlags(c *cli.Context, cfg *config.Config) {
	stringFlags := map[string]*string{
		"input":          &cfg.InputDir,
		"output":         &cfg.OutputDir,
		"model":          &cfg.Model.Name,
		"model-dir":      &cfg.Model.Dir,
		"backend":        &cfg.Model.Backend,
		"channel":        &cfg.Segmentation.Channel,
		"overlay-suffix": &cfg.Output.OverlaySuffix,
		"log-file":       &cfg.Logging.File,
	}
	for name, dst := range stringFlags {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}

	if c.Bool("normalize-overlay") {
		cfg.Output.NormalizeOverlay = true
	}
	if c.Bool("no-rois") {
		cfg.Output.WriteROIs = false
	}
	if c.Bool("debug") {
		cfg.Logging.Debug = true
	}
}
