package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kz/proclc/pkg/codegen"
	"github.com/kz/proclc/pkg/diagnostics"
	"github.com/kz/proclc/pkg/isa"
	"github.com/kz/proclc/pkg/parser"
	"github.com/kz/proclc/pkg/version"
	"github.com/spf13/cobra"
)

var (
	debug        bool
	showVersion  bool
	dumpAST      bool
	warnUninit   bool
	noWarnUninit bool
)

var rootCmd = &cobra.Command{
	Use:   "proclc [source] [output]",
	Short: "Compile a source program to the target virtual machine's instruction stream",
	Long: `proclc compiles a procedural source program into the flat, numbered
instruction stream executed by the companion proclvm register/memory
machine.

EXAMPLES:
  proclc prog.imp prog.out        # compile prog.imp, write the instruction stream
  proclc -d prog.imp prog.out     # same, with compilation details on stderr
  proclc --dump-ast prog.imp /dev/null   # print the parsed AST as JSON to stdout, exit without compiling`,
	Args: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			return nil
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersion())
			return
		}
		if err := compile(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST as JSON to stdout and exit, without generating code")
	rootCmd.Flags().BoolVar(&warnUninit, "warn-uninit", true, "warn (rather than stay silent) about uninitialized reads inside loops")
	rootCmd.Flags().BoolVar(&noWarnUninit, "no-warn-uninit", false, "suppress uninitialized-read warnings inside loops")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func compile(sourceFile, outputFile string) error {
	if debug {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", sourceFile)
	}

	src, err := os.ReadFile(sourceFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourceFile, err)
	}

	prog, err := parser.Parse(string(src))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", sourceFile, err)
	}

	if dumpAST {
		if err := json.NewEncoder(os.Stdout).Encode(prog); err != nil {
			return fmt.Errorf("dumping AST: %w", err)
		}
		return nil
	}

	diags := diagnostics.New()
	diags.SuppressWarnings(noWarnUninit || !warnUninit)
	code := codegen.Generate(prog, diags)

	if diags.HasErrors() {
		return fmt.Errorf("compilation failed with %d diagnostic(s)", len(diags.All()))
	}

	if debug {
		fmt.Fprintf(os.Stderr, "Generated %d instructions\n", len(code))
	}

	if err := writeProgram(outputFile, code); err != nil {
		return fmt.Errorf("writing %s: %w", outputFile, err)
	}
	return nil
}

func writeProgram(path string, code []isa.Instruction) error {
	return os.WriteFile(path, []byte(isa.Render(code)), 0o644)
}
