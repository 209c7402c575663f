package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-mmd2pdf/internal/assets"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mmd2pdf [convert] <input.md> [flags]")
	fmt.Fprintln(w, "       mmd2pdf <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert a markdown file with Mermaid diagrams to PDF (default)")
	fmt.Fprintln(w, "  doctor     Check Chrome, the Mermaid CLI and the temp directory")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mmd2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mmd2pdf convert <input.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render Mermaid code blocks to SVG and convert the document to PDF.")
	fmt.Fprintln(w, "Diagrams that fail to render are kept as code blocks.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (default: input with .pdf)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -t, --timeout <dur>       PDF export timeout (default: 30s)")
	fmt.Fprintln(w, "      --html                Also write the HTML document")
	fmt.Fprintln(w, "      --html-only           Write the HTML document, skip PDF")
	fmt.Fprintln(w, "      --watch               Reconvert when the input changes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagrams:")
	fmt.Fprintln(w, "  -w, --workers <n>         Diagrams rendered in parallel (0 = auto)")
	fmt.Fprintln(w, "      --render-timeout <d>  Timeout per diagram (default: 30s)")
	fmt.Fprintln(w, "      --mmdc <path>         Mermaid CLI binary (default: mmdc)")
	fmt.Fprintln(w, "      --theme <s>           Theme: default, forest, dark, neutral")
	fmt.Fprintln(w, "      --background <s>      Background color (default: transparent)")
	fmt.Fprintln(w, "      --mermaid-config <f>  Mermaid JSON config file")
	fmt.Fprintln(w, "      --puppeteer-config <f> Puppeteer JSON config file")
	fmt.Fprintln(w, "      --lang <s>            Extra fence language to render (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Footer:")
	fmt.Fprintln(w, "      --footer-position <s> Position: left, center, right")
	fmt.Fprintln(w, "      --footer-text <s>     Custom footer text")
	fmt.Fprintln(w, "      --footer-date <s>     Date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets: iso, european, us, long")
	fmt.Fprintln(w, "      --footer-page-number  Show page numbers")
	fmt.Fprintln(w, "      --no-footer           Disable footer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <name|path>   CSS style name or file path")
	fmt.Fprintf(w, "                            Built-in: %s\n", strings.Join(assets.ListStyles(), ", "))
	fmt.Fprintln(w, "      --asset-path <dir>    Directory searched for styles/<name>.css")
	fmt.Fprintln(w, "      --no-style            Disable CSS styling")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MMD2PDF_CONFIG, MMD2PDF_STYLE, MMD2PDF_TIMEOUT, MMD2PDF_RENDER_TIMEOUT,")
	fmt.Fprintln(w, "  MMD2PDF_MMDC, MMD2PDF_THEME, MMD2PDF_WORKERS, MMD2PDF_PAGE_SIZE, MMD2PDF_WORK_DIR")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  mmd2pdf design.md")
	fmt.Fprintln(w, "  mmd2pdf convert design.md -o out/ --theme dark")
	fmt.Fprintln(w, "  mmd2pdf design.md --footer-page-number --footer-date auto")
	fmt.Fprintln(w, "  mmd2pdf design.md --watch")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mmd2pdf doctor [--json] [--mmdc <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome/Chromium and the Mermaid CLI are available")
	fmt.Fprintln(w, "and that the temp directory is writable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output results as JSON")
	fmt.Fprintln(w, "      --mmdc <path>         Mermaid CLI binary to check (default: mmdc)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit status is 1 when errors were found.")
}

// runHelp prints help for a command and returns the exit code.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mmd2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		printUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
