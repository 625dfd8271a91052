// Flowgraph CLI — компиляция workflow документов в граф.
//
// Использование:
//
//	flowgraph [--api-url URL] [--config FILE] [--json] [--verbose] <command> FILE [flags]
//
// Команды:
//
//	compile   Граф в формате dot, mermaid или json
//	validate  Проверка ссылок на параметры
//	resolve   Документ с подставленными параметрами
//	example   Образец документа
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowgraph/internal/cli"
	"github.com/shaiso/Flowgraph/internal/config"
	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var configPath string
	var jsonOutput bool
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "flowgraph",
		Short:         "Flowgraph CLI — workflow document to graph compiler",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(telemetry.NewCLILogger(os.Stderr, verbose))
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", os.Getenv("FLOWGRAPH_API_URL"), "API server URL (compile locally when empty)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $FLOWGRAPH_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")

	clientFn := func() *cli.Client {
		if apiURL == "" {
			return nil
		}
		return cli.NewClient(apiURL)
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }
	optionsFn := func() (engine.Options, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return engine.Options{}, err
		}
		return cfg.CompilerOptions()
	}

	rootCmd.AddCommand(
		cli.NewCompileCmd(clientFn, outputFn, optionsFn),
		cli.NewValidateCmd(clientFn, outputFn),
		cli.NewResolveCmd(clientFn, outputFn),
		cli.NewExampleCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		// Проблемы validate уже выведены
		if !errors.Is(err, cli.ErrIssuesFound) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
