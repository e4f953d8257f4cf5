// objtool is a CLI utility for inspecting Wavefront OBJ models.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/objmodel/internal/config"
	"github.com/Faultbox/objmodel/internal/loader"
	"github.com/Faultbox/objmodel/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	code := run(cfg, args[0], args[1:])
	logger.Sync()
	os.Exit(code)
}

func run(cfg *config.Config, command string, args []string) int {
	logger.Debug("running command", zap.String("command", command), zap.Strings("args", args))

	switch command {
	case "info":
		return cmdInfo(cfg, args)
	case "dump":
		return cmdDump(cfg, args)
	case "validate", "check":
		return cmdValidate(cfg, args)
	case "init-config":
		return cmdInitConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ model utility

Usage:
  objtool [flags] <command> [arguments]

Commands:
  info <file.obj>             Show vertex, face and bounds information
  dump <file.obj>             Print every resolved vertex
  validate <file.obj>...      Parse files and report errors
  init-config [path]          Write the current settings to a config file

Flags:
  -config <path>      Config file (default ./objtool.yaml or user config dir)
  -format text|yaml   Output format
  -encoding <name>    Input encoding (utf-8, euc-kr, shift_jis, windows-1252, iso-8859-1)
  -max-lines <n>      Reject files with more lines (0 = unlimited)
  -max-bytes <n>      Reject files larger than n bytes (0 = unlimited)
  -debug              Enable debug logging
  -log-file <path>    Also write logs to a rotated file

Examples:
  objtool info cube.obj
  objtool -format yaml dump cube.obj
  objtool validate models/*.obj`)
}

func cmdInfo(cfg *config.Config, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>")
		return 1
	}

	model, err := loader.LoadFile(args[0], loader.OptionsFromConfig(cfg.Parse))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	summary := summarize(args[0], model)
	if cfg.Output.Format == config.FormatYAML {
		err = writeYAML(os.Stdout, summary)
	} else {
		writeInfoText(os.Stdout, summary, cfg.Output.Precision)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

func cmdDump(cfg *config.Config, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool dump <file.obj>")
		return 1
	}

	model, err := loader.LoadFile(args[0], loader.OptionsFromConfig(cfg.Parse))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.Output.Format == config.FormatYAML {
		err = writeYAML(os.Stdout, vertexRecords(model))
	} else {
		writeDumpText(os.Stdout, model, cfg.Output.Precision)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

func cmdValidate(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool validate <file.obj>...")
		return 1
	}

	opts := loader.OptionsFromConfig(cfg.Parse)
	results := make([]validationResult, 0, len(args))
	for _, path := range args {
		model, err := loader.LoadFile(path, opts)
		results = append(results, newValidationResult(path, model, err))
	}

	failed := writeValidation(os.Stdout, results)
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d of %d files failed\n", failed, len(results))
		return 1
	}
	return 0
}

func cmdInitConfig(cfg *config.Config, args []string) int {
	var err error
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if len(args) > 0 {
		path = args[0]
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		return 1
	}

	fmt.Printf("Wrote config: %s\n", path)
	return 0
}
