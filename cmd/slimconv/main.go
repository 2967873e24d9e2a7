// Command slimconv prints the Ruby extracted from Slim templates and checks
// that it parses.
//
//	slimconv [flags] [file or directory ...]
//
// Directories are searched for templates selected by the workspace config
// (.slimls.yaml, .slimls.yml or .slimls.json in the directory, or -config).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/collections"
	"bennypowers.dev/slimls/internal/config"
	"bennypowers.dev/slimls/internal/convert"
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/ruby"
	"bennypowers.dev/slimls/internal/version"
	"github.com/bmatcuk/doublestar/v4"
)

// Exit codes
const (
	exitOK       = 0
	exitProblems = 1
	exitUsage    = 2
)

type options struct {
	configPath string
	format     string
	check      bool
	constants  bool
	version    bool
}

func main() {
	code := run(os.Args[1:], os.Stdout, os.Stderr)
	ruby.ClosePool()
	os.Exit(code)
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fset := flag.NewFlagSet("slimconv", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&opts.configPath, "config", "", "Path to a config file (default: look in each directory)")
	fset.StringVar(&opts.format, "format", "text", "Output format: text or json")
	fset.BoolVar(&opts.check, "check", false, "Report problems and exit non-zero when any are found")
	fset.BoolVar(&opts.constants, "constants", false, "List the constants each template references")
	fset.BoolVar(&opts.version, "version", false, "Print the version and exit")
	if err := fset.Parse(args); err != nil {
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stdout, "slimconv", version.GetFullVersion())
		return exitOK
	}
	if opts.format != "text" && opts.format != "json" {
		fmt.Fprintf(stderr, "Error: unknown format %q\n", opts.format)
		fset.Usage()
		return exitUsage
	}

	log.SetOutput(stderr)

	var override *config.Config
	if opts.configPath != "" {
		cfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
		log.SetLevel(cfg.Level())
		override = &cfg
	}

	targets := fset.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	files, err := discover(targets, override)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	reports := make([]fileReport, 0, len(files))
	problems := false
	for _, path := range files {
		report, err := analyseFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
		if !report.clean() {
			problems = true
		}
		reports = append(reports, report)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
	} else {
		writeText(stdout, reports, opts)
	}

	if opts.check && problems {
		return exitProblems
	}
	return exitOK
}

// discover expands targets into template paths. Files named explicitly are
// always included; directories are searched with the config's patterns.
func discover(targets []string, override *config.Config) ([]string, error) {
	seen := collections.NewSet[string]()
	var files []string
	add := func(path string) {
		if !seen.Has(path) {
			seen.Add(path)
			files = append(files, path)
		}
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(target)
			continue
		}

		var cfg config.Config
		if override != nil {
			cfg = *override
		} else {
			loaded, path, err := config.Load(target)
			if err != nil {
				return nil, err
			}
			if path != "" {
				log.Debug("Using config %s for %s", path, target)
			}
			cfg = loaded
		}

		matches, err := findTemplates(os.DirFS(target), cfg)
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", target, err)
		}
		for _, rel := range matches {
			add(filepath.Join(target, filepath.FromSlash(rel)))
		}
	}
	return files, nil
}

// findTemplates returns the sorted slash paths in fsys selected by cfg
func findTemplates(fsys fs.FS, cfg config.Config) ([]string, error) {
	found := collections.NewSet[string]()
	for _, pattern := range cfg.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if analysis.IsTemplatePath(m) && cfg.Matches(m) {
				found.Add(m)
			}
		}
	}
	return collections.Sorted(found), nil
}

type issueReport struct {
	Line          int    `json:"line"`
	GeneratedLine int    `json:"generatedLine"`
	Column        int    `json:"column"`
	Message       string `json:"message"`
}

type fileReport struct {
	Path        string            `json:"path"`
	Code        string            `json:"code"`
	Mappings    []convert.Mapping `json:"mappings"`
	SyntaxError string            `json:"syntaxError,omitempty"`
	Issues      []issueReport     `json:"issues"`
	Constants   []string          `json:"constants"`
}

func (r fileReport) clean() bool {
	return r.SyntaxError == "" && len(r.Issues) == 0
}

func analyseFile(path string) (fileReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return fileReport{}, err
	}
	report, err := analysis.Analyze(string(content), path)
	if err != nil {
		return fileReport{}, err
	}

	out := fileReport{
		Path:      path,
		Mappings:  []convert.Mapping{},
		Issues:    []issueReport{},
		Constants: []string{},
	}
	if report.SyntaxError != nil {
		out.SyntaxError = report.SyntaxError.Error()
		return out, nil
	}
	out.Code = report.Conversion.Code
	out.Mappings = append(out.Mappings, report.Conversion.Mapper.Mappings()...)
	for _, issue := range report.Issues {
		out.Issues = append(out.Issues, issueReport{
			Line:          issue.TemplateLine,
			GeneratedLine: issue.Line,
			Column:        issue.Column,
			Message:       issue.Message,
		})
	}
	out.Constants = collections.Sorted(collections.NewSet(report.ReferenceNames()...))
	return out, nil
}

func writeText(w io.Writer, reports []fileReport, opts options) {
	showCode := !opts.check && !opts.constants
	for _, r := range reports {
		if showCode {
			if len(reports) > 1 {
				fmt.Fprintf(w, "# %s\n", r.Path)
			}
			if r.SyntaxError != "" {
				fmt.Fprintf(w, "# %s\n", r.SyntaxError)
				continue
			}
			if r.Code != "" {
				fmt.Fprintln(w, r.Code)
			}
			continue
		}

		if opts.check {
			if r.SyntaxError != "" {
				fmt.Fprintln(w, r.SyntaxError)
			}
			for _, issue := range r.Issues {
				fmt.Fprintf(w, "%s:%d - %s (generated line %d)\n", r.Path, issue.Line, issue.Message, issue.GeneratedLine)
			}
		}
		if opts.constants && len(r.Constants) > 0 {
			fmt.Fprintf(w, "%s: %s\n", r.Path, strings.Join(r.Constants, ", "))
		}
	}
}
