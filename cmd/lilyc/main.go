// Command lilyc is the Lily front-end driver: it feeds source files
// through the preparser, parser, analyzer and MIR builder and prints
// diagnostics or the requested intermediate form.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lily-lang/lilyc/internal/config"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/pipeline"
	"github.com/lily-lang/lilyc/internal/repl"
	"github.com/lily-lang/lilyc/internal/scanner"
)

var (
	verbose    bool
	configPath string
)

func main() {
	root := &cobra.Command{
		Use:          "lilyc",
		Short:        "Lily front end: source to checked tree and MIR",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configPath, "config", "lily.yaml", "build configuration file")

	root.AddCommand(checkCmd(), tokensCmd(), astCmd(), mirCmd(), replCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

func compileFile(path string) (*pipeline.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pipeline.CompileSource(path, string(data), loadConfig()), nil
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check files and print diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			pkg := pipeline.NewPackage("main", cfg)
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				pkg.AddFile(path, string(data))
			}
			ok := pkg.Compile()
			diagnostic.RenderAll(os.Stderr, pkg.Sink)
			if !ok {
				return fmt.Errorf("%d errors", pkg.Sink.CountError())
			}
			return nil
		},
	}
}

func tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the token vector of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			for _, t := range scanner.New(string(data), 0).ScanAll() {
				fmt.Printf("%d:%d\t%s\t%q\n", t.Loc.StartLine, t.Loc.StartCol, t.Kind, t.Lit)
			}
			return nil
		},
	}
}

func astCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast FILE",
		Short: "Print the parsed declarations of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := compileFile(args[0])
			if err != nil {
				return err
			}
			diagnostic.RenderAll(os.Stderr, pkg.Sink)
			for _, f := range pkg.Files {
				for _, d := range f.Decls {
					fmt.Println(d)
				}
			}
			return nil
		},
	}
}

func mirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mir FILE",
		Short: "Lower a file and print its MIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := compileFile(args[0])
			if err != nil {
				return err
			}
			diagnostic.RenderAll(os.Stderr, pkg.Sink)
			if pkg.MIR == nil {
				return fmt.Errorf("%d errors", pkg.Sink.CountError())
			}
			fmt.Print(pkg.MIR.Print())
			return nil
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive front-end explorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return repl.New(loadConfig(), os.Stdout).Run()
		},
	}
}
