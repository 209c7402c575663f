package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, comma-separated
}

// takesValue reports whether the flag consumes the next word.
func (f flagDef) takesValue() bool {
	return f.Type != flagBool
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed positional values (help topics, shells)
	TakesFiles  bool     // accepts file arguments
	FilePattern string   // glob for file arguments (e.g., "*.md")
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"page-size":       {Values: []string{"letter", "a4", "legal"}},
	"orientation":     {Values: []string{"portrait", "landscape"}},
	"footer-position": {Values: []string{"left", "center", "right"}},
	"theme":           {Values: []string{"default", "forest", "dark", "neutral"}},

	// File flags with glob patterns
	"output":           {FileGlob: "*.pdf,*.html"},
	"config":           {FileGlob: "*.yaml,*.yml"},
	"style":            {FileGlob: "*.css"},
	"mermaid-config":   {FileGlob: "*.json"},
	"puppeteer-config": {FileGlob: "*.json"},

	// Directory flags
	"asset-path": {IsDir: true},
}

// markdownPattern is the glob for the convert input.
const markdownPattern = "*.md,*.markdown"

var supportedShells = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		// Determine base type from pflag type
		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		// Override type based on completion metadata
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the FlagSets the commands parse with.
func getCommands() []commandDef {
	convertFlags := extractFlagsFromFlagSet(newConvertFlagSet(&convertFlags{}))
	doctorFlags := extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{}))

	return []commandDef{
		{
			Name:        "convert",
			Desc:        "Convert a markdown file with Mermaid diagrams to PDF",
			Flags:       convertFlags,
			TakesFiles:  true,
			FilePattern: markdownPattern,
		},
		{
			Name:  "doctor",
			Desc:  "Check Chrome, the Mermaid CLI and the temp directory",
			Flags: doctorFlags,
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: []string{"convert", "doctor", "version", "help", "completion"},
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: supportedShells,
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	case ShellPowerShell:
		script = generatePowerShell(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(supportedShells, ", "))
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: completion takes one shell, got %d arguments", ErrUsage, len(args))
	}

	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mmd2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mmd2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(mmd2pdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mmd2pdf completion fish > ~/.config/fish/completions/mmd2pdf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    mmd2pdf completion powershell | Out-String | Invoke-Expression")
}

// ---------------------------------------------------------------------------
// Helpers shared by the generators
// ---------------------------------------------------------------------------

// flagNames returns "--long" and, when set, "-s".
func flagNames(f flagDef) []string {
	names := []string{"--" + f.Long}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

// globs splits a comma-separated glob list.
func globs(pattern string) []string {
	if pattern == "" {
		return nil
	}
	return strings.Split(pattern, ",")
}

// commandNames lists the registry names in order.
func commandNames(cmds []commandDef) []string {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	return names
}

// uniqueValueFlags returns the value-taking flags of all commands, once per
// long name.
func uniqueValueFlags(cmds []commandDef) []flagDef {
	seen := make(map[string]bool)
	var out []flagDef
	for _, c := range cmds {
		for _, f := range c.Flags {
			if !f.takesValue() || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			out = append(out, f)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(cmds []commandDef) string {
	var b strings.Builder
	names := strings.Join(commandNames(cmds), " ")

	b.WriteString("# bash completion for mmd2pdf\n\n")
	b.WriteString("_mmd2pdf_files() {\n")
	b.WriteString("    local pattern\n")
	b.WriteString("    COMPREPLY=($(compgen -d -- \"$cur\"))\n")
	b.WriteString("    for pattern in \"$@\"; do\n")
	b.WriteString("        COMPREPLY+=($(compgen -f -X \"!$pattern\" -- \"$cur\"))\n")
	b.WriteString("    done\n")
	b.WriteString("}\n\n")

	b.WriteString("_mmd2pdf_completions() {\n")
	b.WriteString("    local cur prev cmd i\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"\"\n")
	b.WriteString("    for ((i = 1; i < COMP_CWORD; i++)); do\n")
	b.WriteString("        case \"${COMP_WORDS[i]}\" in\n")
	fmt.Fprintf(&b, "            %s) cmd=\"${COMP_WORDS[i]}\"; break ;;\n", strings.Join(commandNames(cmds), "|"))
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")

	// Flag values
	b.WriteString("    case \"$prev\" in\n")
	for _, f := range uniqueValueFlags(cmds) {
		fmt.Fprintf(&b, "        %s)\n", strings.Join(flagNames(f), "|"))
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(f.Values, " "))
		case flagFile:
			fmt.Fprintf(&b, "            _mmd2pdf_files %s\n", bashWords(globs(f.FileGlob)))
		case flagDir:
			b.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\"))\n")
		default:
			b.WriteString("            COMPREPLY=()\n")
		}
		b.WriteString("            return ;;\n")
	}
	b.WriteString("    esac\n\n")

	// Commands
	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		writeBashCommandBody(&b, c)
		b.WriteString("            ;;\n")
	}
	b.WriteString("        *)\n")
	b.WriteString("            # convert is the default command\n")
	b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
	fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", bashFlagWords(cmds[0].Flags))
	b.WriteString("            else\n")
	fmt.Fprintf(&b, "                _mmd2pdf_files %s\n", bashWords(globs(markdownPattern)))
	fmt.Fprintf(&b, "                COMPREPLY+=($(compgen -W \"%s\" -- \"$cur\"))\n", names)
	b.WriteString("            fi\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _mmd2pdf_completions mmd2pdf\n")
	return b.String()
}

func writeBashCommandBody(b *strings.Builder, c commandDef) {
	switch {
	case len(c.Args) > 0:
		fmt.Fprintf(b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(c.Args, " "))
	case c.TakesFiles:
		b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(b, "                COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", bashFlagWords(c.Flags))
		b.WriteString("            else\n")
		fmt.Fprintf(b, "                _mmd2pdf_files %s\n", bashWords(globs(c.FilePattern)))
		b.WriteString("            fi\n")
	case len(c.Flags) > 0:
		fmt.Fprintf(b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", bashFlagWords(c.Flags))
	default:
		b.WriteString("            COMPREPLY=()\n")
	}
}

func bashFlagWords(flags []flagDef) string {
	var words []string
	for _, f := range flags {
		words = append(words, flagNames(f)...)
	}
	return strings.Join(words, " ")
}

// bashWords single-quotes each glob so the shell does not expand it.
func bashWords(patterns []string) string {
	quoted := make([]string, len(patterns))
	for i, p := range patterns {
		quoted[i] = "'" + p + "'"
	}
	return strings.Join(quoted, " ")
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef mmd2pdf\n\n")
	b.WriteString("_mmd2pdf() {\n")
	b.WriteString("  local -a commands\n")
	b.WriteString("  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("  )\n\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  local -a %s_flags\n", c.Name)
		fmt.Fprintf(&b, "  %s_flags=(\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "    %s\n", zshFlagSpec(f))
		}
		b.WriteString("  )\n\n")
	}

	inputSpec := "'*:markdown file:" + zshFiles(markdownPattern) + "'"

	b.WriteString("  if (( CURRENT == 2 )) && [[ ${words[2]} != -* ]]; then\n")
	b.WriteString("    _describe -t commands 'mmd2pdf command' commands\n")
	fmt.Fprintf(&b, "    %s\n", zshFiles(markdownPattern))
	b.WriteString("    return\n")
	b.WriteString("  fi\n\n")

	b.WriteString("  case ${words[2]} in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("      shift words\n")
		b.WriteString("      (( CURRENT-- ))\n")
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "      _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
		case c.TakesFiles:
			fmt.Fprintf(&b, "      _arguments -s $%s_flags %s\n", c.Name, inputSpec)
		case len(c.Flags) > 0:
			fmt.Fprintf(&b, "      _arguments -s $%s_flags\n", c.Name)
		default:
			b.WriteString("      _message 'no arguments'\n")
		}
		b.WriteString("      ;;\n")
	}
	b.WriteString("    *)\n")
	fmt.Fprintf(&b, "      _arguments -s $%s_flags %s\n", cmds[0].Name, inputSpec)
	b.WriteString("      ;;\n")
	b.WriteString("  esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mmd2pdf mmd2pdf\n")
	return b.String()
}

// zshFlagSpec builds one _arguments spec, single-quoted.
func zshFlagSpec(f flagDef) string {
	desc := "[" + zshEscape(f.Desc) + "]"
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		action = ":file:" + zshFiles(f.FileGlob)
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":" + f.Long + ": "
	}

	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}'" + desc + action + "'"
}

func zshFiles(pattern string) string {
	var parts []string
	for _, g := range globs(pattern) {
		parts = append(parts, "-g \""+g+"\"")
	}
	return "_files " + strings.Join(parts, " ")
}

// zshEscape makes s safe inside a single-quoted _arguments description.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(cmds []commandDef) string {
	var b strings.Builder
	names := strings.Join(commandNames(cmds), " ")

	b.WriteString("# fish completion for mmd2pdf\n\n")
	b.WriteString("function __fish_mmd2pdf_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_mmd2pdf_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test \"$cmd[2]\" = $argv[1]\n")
	b.WriteString("end\n\n")

	b.WriteString("complete -c mmd2pdf -f\n\n")
	b.WriteString("# Commands\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mmd2pdf -n __fish_mmd2pdf_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_mmd2pdf_using_command %s'", c.Name)
		if c.TakesFiles {
			// convert is also the default command
			cond = fmt.Sprintf("'__fish_mmd2pdf_using_command %s; or not __fish_seen_subcommand_from %s'", c.Name, names)
		}

		fmt.Fprintf(&b, "# %s\n", c.Name)
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c mmd2pdf -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		if c.TakesFiles {
			for _, g := range globs(c.FilePattern) {
				fmt.Fprintf(&b, "complete -c mmd2pdf -n %s -a '(__fish_complete_suffix %s)'\n", cond, strings.TrimPrefix(g, "*"))
			}
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c mmd2pdf -n %s%s\n", cond, fishFlagSpec(f))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func fishFlagSpec(f flagDef) string {
	var b strings.Builder
	if f.Short != "" {
		b.WriteString(" -s " + f.Short)
	}
	b.WriteString(" -l " + f.Long)
	switch f.Type {
	case flagBool:
	case flagEnum:
		b.WriteString(" -x -a '" + strings.Join(f.Values, " ") + "'")
	case flagFile:
		b.WriteString(" -r -F")
	case flagDir:
		b.WriteString(" -x -a '(__fish_complete_directories)'")
	default:
		b.WriteString(" -x")
	}
	b.WriteString(" -d '" + fishEscape(f.Desc) + "'")
	return b.String()
}

func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# PowerShell completion for mmd2pdf\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName mmd2pdf -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s = %s\n", psQuote(c.Name), psQuote(c.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s = [ordered]@{\n", psQuote(c.Name))
		for _, f := range c.Flags {
			for _, n := range flagNames(f) {
				fmt.Fprintf(&b, "            %s = %s\n", psQuote(n), psQuote(f.Desc))
			}
		}
		b.WriteString("        }\n")
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $values = @{\n")
	for _, f := range uniqueValueFlags(cmds) {
		if f.Type != flagEnum {
			continue
		}
		for _, n := range flagNames(f) {
			fmt.Fprintf(&b, "        %s = @(%s)\n", psQuote(n), psList(f.Values))
		}
	}
	for _, c := range cmds {
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "        %s = @(%s)\n", psQuote(c.Name), psList(c.Args))
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString(`    $elements = @($commandAst.CommandElements | Select-Object -Skip 1 | ForEach-Object { $_.ToString() })
    if ($wordToComplete -ne '' -and $elements.Count -gt 0) {
        $elements = @($elements | Select-Object -SkipLast 1)
    }
    $command = 'convert'
    if ($elements.Count -gt 0 -and $commands.Contains($elements[0])) {
        $command = $elements[0]
    }
    $previous = ''
    if ($elements.Count -gt 0) {
        $previous = $elements[-1]
    }

    # Enum values, then fixed arguments of help and completion
    $candidates = $null
    if ($values.ContainsKey($previous)) {
        $candidates = $values[$previous]
    } elseif ($elements.Count -eq 1 -and $values.ContainsKey($command)) {
        $candidates = $values[$command]
    }
    if ($candidates) {
        $candidates | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    if ($elements.Count -eq 0 -and $wordToComplete -notlike '-*') {
        $commands.GetEnumerator() | Where-Object { $_.Key -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'Command', $_.Value)
        }
        return
    }

    if ($wordToComplete -like '-*' -and $flags.ContainsKey($command)) {
        $flags[$command].GetEnumerator() | Where-Object { $_.Key -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterName', $_.Value)
        }
    }
    # Anything else falls back to path completion.
}
`)
	return b.String()
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func psList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = psQuote(v)
	}
	return strings.Join(quoted, ", ")
}
