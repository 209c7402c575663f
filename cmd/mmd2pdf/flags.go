package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// rendererFlags holds diagram renderer flags.
type rendererFlags struct {
	command         string
	theme           string
	background      string
	mermaidConfig   string
	puppeteerConfig string
	timeout         string
	languages       []string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// footerFlags holds footer-related flags.
type footerFlags struct {
	position   string
	text       string
	date       string
	pageNumber bool
	disabled   bool
}

// assetFlags holds style flags.
type assetFlags struct {
	style     string // Name, file path or literal CSS
	assetPath string // Override asset directory
	noStyle   bool   // Disable CSS styling
}

// outputFlags holds output mode flags.
type outputFlags struct {
	html     bool // Output HTML alongside PDF
	htmlOnly bool // Output HTML only, skip PDF
	watch    bool // Reconvert on change
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	timeout    string
	renderer   rendererFlags
	page       pageFlags
	footer     footerFlags
	assets     assetFlags
	outputMode outputFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addRendererFlags adds diagram renderer flags to a FlagSet.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVar(&f.command, "mmdc", "", "Mermaid CLI binary name or path (default: mmdc)")
	fs.StringVar(&f.theme, "theme", "", "Mermaid theme: default, forest, dark, neutral")
	fs.StringVar(&f.background, "background", "", "diagram background (default: transparent)")
	fs.StringVar(&f.mermaidConfig, "mermaid-config", "", "Mermaid JSON config file")
	fs.StringVar(&f.puppeteerConfig, "puppeteer-config", "", "Puppeteer JSON config file")
	fs.StringVar(&f.timeout, "render-timeout", "", "timeout per diagram (e.g., 30s)")
	fs.StringSliceVar(&f.languages, "lang", nil, "extra fence language rendered as a diagram (repeatable)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addFooterFlags adds footer flags to a FlagSet.
func addFooterFlags(fs *flag.FlagSet, f *footerFlags) {
	fs.StringVar(&f.position, "footer-position", "", "footer position: left, center, right")
	fs.StringVar(&f.text, "footer-text", "", "custom footer text")
	fs.StringVar(&f.date, "footer-date", "", "footer date: \"auto\", \"auto:FORMAT\", or literal")
	fs.BoolVar(&f.pageNumber, "footer-page-number", false, "show page numbers in footer")
	fs.BoolVar(&f.disabled, "no-footer", false, "disable footer")
}

// addAssetFlags adds style flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.noStyle, "no-style", false, "disable CSS styling")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "output HTML alongside PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "output HTML only, skip PDF")
	fs.BoolVar(&f.watch, "watch", false, "reconvert when the input changes")
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	json    bool
	command string
}

// newConvertFlagSet registers every convert flag on a new FlagSet bound to f.
// Parsing and shell completion share it.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "diagrams rendered in parallel (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF export timeout (e.g., 30s, 2m)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)
	addPageFlags(fs, &f.page)
	addFooterFlags(fs, &f.footer)
	addAssetFlags(fs, &f.assets)
	addOutputFlags(fs, &f.outputMode)

	return fs
}

// newDoctorFlagSet registers the doctor flags on a new FlagSet bound to f.
func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&f.json, "json", false, "output results as JSON")
	fs.StringVar(&f.command, "mmdc", "", "Mermaid CLI binary to check")
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
// Usage goes to usageOut when -h is given or parsing fails.
func parseConvertFlags(args []string, usageOut io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.SetOutput(usageOut)
	fs.Usage = func() { printConvertUsage(usageOut) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
