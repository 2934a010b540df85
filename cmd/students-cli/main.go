// students-cli manages student records from the terminal, working on the
// same file as the HTTP API.
//
//	students-cli -file storage/students.json add -name Ann -age 20 -grade 10 -gpa 3.5
//	students-cli -config config/local.yaml search -keyword ann -min-gpa 3
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/jsonfile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errUsage signals bad arguments; the message has already been printed.
var errUsage = errors.New("usage")

func run(args []string, stdout, stderr io.Writer) int {
	// Store debug output would drown the command output; only warnings
	// and errors reach stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	fs := flag.NewFlagSet("students-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "Path to the configuration YAML file")
	filePath := fs.String("file", "", "Path to a JSON records file (overrides -config)")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "help" {
		printUsage(stdout)
		return 0
	}

	store, closeStore, err := openStore(*configPath, *filePath)
	if err != nil {
		color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeStore()

	c := &cli{store: store, out: stdout, errOut: stderr}

	switch cmd {
	case "list":
		err = c.list(rest)
	case "add":
		err = c.add(rest)
	case "get":
		err = c.get(rest)
	case "update":
		err = c.update(rest)
	case "delete":
		err = c.delete(rest)
	case "search":
		err = c.search(rest)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, errFailed):
		return 1
	default:
		color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func openStore(configPath, filePath string) (storage.Storage, func() error, error) {
	if filePath != "" {
		store, err := jsonfile.New(filePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	}

	if configPath == "" {
		return nil, nil, errors.New("no records file: use -file, -config or CONFIG_PATH")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return storage.Open(cfg)
}

func printUsage(w io.Writer) {
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w, "Usage: students-cli [-file path | -config path] <command> [args]")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list   [-o table|json|yaml]            List all students")
	fmt.Fprintln(w, "  add    -name -age -grade [-email] [-gpa] [-notes]")
	fmt.Fprintln(w, "                                         Add a student")
	fmt.Fprintln(w, "  get    <id> [-o ...]                   Show one student")
	fmt.Fprintln(w, "  update <id> [-name ...]                Change only the given fields")
	fmt.Fprintln(w, "  delete <id>                            Delete a student")
	fmt.Fprintln(w, "  search [-keyword] [-grade] [-min-age] [-max-age] [-min-gpa] [-max-gpa] [-o ...]")
	fmt.Fprintln(w, "                                         Filter students")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CONFIG_PATH   Default for -config")
}
