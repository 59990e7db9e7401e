package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cvdata-tools/internal/config"
	"github.com/ironsheep/cvdata-tools/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type command struct {
	name  string
	usage string
	run   func(cfg *config.Config, args []string) error
}

var commands = []command{
	{"cvat", "summarise a CVAT XML export or print a review link", runCVAT},
	{"labelme", "inspect LabelMe JSON files, optionally writing polygon masks", runLabelMe},
	{"attri", "select, update and snapshot attribute tables", runAttri},
	{"scan", "list files under a directory by extension", runScan},
	{"syncrm", "delete target files that have no counterpart in source", runSyncRm},
	{"pdf", "rotate, delete and append PDF pages", runPDF},
	{"recolor", "tint images towards a hue, optionally inside LabelMe polygons", runRecolor},
	{"palette", "print or render the synthetic color bar", runPalette},
	{"heatmap", "render a 2D array as a heatmap PNG", runHeatmap},
	{"review", "fetch captioned previews for a review file and export it", runReview},
	{"serve", "run the MCP server on stdin/stdout", runServe},
}

func usage() {
	fmt.Println("cvdata - dataset tools for computer-vision labeling")
	fmt.Println()
	fmt.Println("Usage: cvdata <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, c := range commands {
		fmt.Printf("  %-10s %s\n", c.name, c.usage)
	}
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CVDATA_LOG_LEVEL=debug               Log level (default info)")
	fmt.Println("  CVDATA_CVAT_BASE_URL=https://host    Base of CVAT review links")
	fmt.Println("  CVDATA_WORKERS=4                     Worker pool size")
	fmt.Println("  CVDATA_FETCH_TIMEOUT=15s             Preview download timeout")
	fmt.Println()
	fmt.Println("Run 'cvdata <command> -h' for command options.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("cvdata %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.SetupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, c := range commands {
		if c.name != os.Args[1] {
			continue
		}
		if err := c.run(cfg, os.Args[2:]); err != nil {
			log.WithField("command", c.name).Error(err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
	usage()
	os.Exit(2)
}

func runServe(cfg *config.Config, args []string) error {
	server.Version = Version
	log.WithFields(log.Fields{
		"version": Version,
		"commit":  GitCommit,
	}).Debug("Starting MCP server")

	srv := server.New(server.Options{CVATBaseURL: cfg.CVATBaseURL})
	return srv.Run()
}

// printJSON writes v to stdout, indented.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
