package cli

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowgraph/internal/domain"
	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/render"
	"github.com/shaiso/Flowgraph/internal/telemetry"
)

// compileFlags — флаги команды compile.
type compileFlags struct {
	format     string
	strict     bool
	duplicates string
	merge      string
	display    string
	noSink     bool
	out        string
}

func (f *compileFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", string(render.DefaultFormat), "Output format: dot, mermaid or json")
	flags.BoolVar(&f.strict, "strict", false, "Treat unresolved parameter references as errors")
	flags.StringVar(&f.duplicates, "duplicates", "", "Duplicate node policy: fail, merge or rename")
	flags.StringVar(&f.merge, "merge", "", "Group parameter merge policy: last-write-wins or reject")
	flags.StringVar(&f.display, "display", "", "Group label mode: list or table")
	flags.BoolVar(&f.noSink, "no-sink", false, "Do not close a trailing parallel block with a convergence node")
	flags.StringVarP(&f.out, "out", "o", "", "Write the graph to FILE (or into a directory) instead of stdout")
}

// options накладывает явно заданные флаги на настройки из конфигурации.
func (f *compileFlags) options(cmd *cobra.Command, base engine.Options) (engine.Options, error) {
	opts := base
	flags := cmd.Flags()
	var err error

	if flags.Changed("strict") {
		opts.Strict = f.strict
	}
	if flags.Changed("no-sink") {
		opts.NoTrailingSink = f.noSink
	}
	if flags.Changed("duplicates") {
		if opts.Duplicates, err = engine.ParseDuplicatePolicy(f.duplicates); err != nil {
			return opts, err
		}
	}
	if flags.Changed("merge") {
		if opts.Merge, err = engine.ParseMergePolicy(f.merge); err != nil {
			return opts, err
		}
	}
	if flags.Changed("display") {
		if opts.Display, err = engine.ParseDisplayMode(f.display); err != nil {
			return opts, err
		}
	}

	return opts, nil
}

// query переводит явно заданные флаги в параметры запроса к API.
// Незаданные флаги не передаются: действуют настройки сервера.
func (f *compileFlags) query(cmd *cobra.Command, format render.Format) url.Values {
	params := url.Values{}
	params.Set("format", string(format))

	flags := cmd.Flags()
	if flags.Changed("strict") {
		params.Set("strict", strconv.FormatBool(f.strict))
	}
	if flags.Changed("no-sink") {
		params.Set("sink", strconv.FormatBool(!f.noSink))
	}
	if flags.Changed("duplicates") {
		params.Set("duplicates", f.duplicates)
	}
	if flags.Changed("merge") {
		params.Set("merge", f.merge)
	}
	if flags.Changed("display") {
		params.Set("display", f.display)
	}

	return params
}

// NewCompileCmd создаёт команду compile.
//
// Без --api-url документ компилируется локально с настройками из
// конфигурации (optionsFn), иначе — на сервере.
func NewCompileCmd(clientFn func() *Client, outputFn func() *Output, optionsFn func() (engine.Options, error)) *cobra.Command {
	var flags compileFlags

	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a workflow document into a graph",
		Long: "Compile a workflow document (JSON or YAML) into a DOT, Mermaid or JSON graph.\n" +
			"Use - as FILE to read the document from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			format, err := render.ParseFormat(flags.format)
			if err != nil {
				return err
			}

			data, syntax, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			var resp *CompileResponse
			if client := clientFn(); client != nil {
				resp, err = client.Compile(data, syntax, flags.query(cmd, format))
			} else {
				var base engine.Options
				if base, err = optionsFn(); err != nil {
					return err
				}
				var opts engine.Options
				if opts, err = flags.options(cmd, base); err != nil {
					return err
				}
				resp, err = compileLocal(data, syntax, opts, format)
			}
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(resp)
				return nil
			}

			for _, issue := range resp.Issues {
				out.Warn(formatIssue(issue))
			}

			if flags.out != "" {
				path := outputPath(flags.out, args[0], format)
				if err := os.WriteFile(path, []byte(resp.Rendered), 0o644); err != nil {
					return fmt.Errorf("write graph: %w", err)
				}
				out.Success(fmt.Sprintf("Graph written to %s", path))
				return nil
			}

			out.Write(resp.Rendered)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

// compileLocal компилирует и отрисовывает документ в текущем процессе.
func compileLocal(data []byte, syntax engine.Syntax, opts engine.Options, format render.Format) (*CompileResponse, error) {
	start := time.Now()

	compiler, err := engine.NewCompiler(opts)
	if err != nil {
		return nil, err
	}

	result, err := compiler.CompileBytes(data, syntax)
	obs := telemetry.CompileObservation{
		Source:   telemetry.SourceCLI,
		Result:   engine.ErrorCode(err),
		Duration: time.Since(start),
	}
	if err != nil {
		telemetry.ObserveCompile(obs)
		return nil, err
	}
	obs.Nodes = result.Graph.Size()
	telemetry.ObserveCompile(obs)

	rendered, err := render.Render(result.Graph, format)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	slog.Debug("compiled",
		"document", result.Resolved.Name,
		"format", format,
		"nodes", result.Graph.Size(),
		"edges", len(result.Graph.Edges),
		"issues", len(result.Issues),
		"duration", obs.Duration,
	)

	return &CompileResponse{
		Format:   string(format),
		Rendered: string(rendered),
		Issues:   result.Issues,
	}, nil
}

// outputPath возвращает путь файла графа. Если out — каталог, имя файла
// берётся из имени документа с расширением формата.
func outputPath(out, input string, format render.Format) string {
	info, err := os.Stat(out)
	if err != nil || !info.IsDir() {
		return out
	}

	name := "graph"
	if input != stdinPath {
		base := filepath.Base(input)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(out, name+format.Extension())
}

// formatIssue описывает неразрешённую ссылку одной строкой.
func formatIssue(issue domain.ValidationIssue) string {
	return fmt.Sprintf("step %s: parameter %q references undefined %s",
		issue.StepPath, issue.Parameter, issue.Reference)
}
