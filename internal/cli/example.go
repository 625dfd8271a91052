package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/Flowgraph/internal/engine"
)

// NewExampleCmd создаёт команду example: печать образца документа.
// Вывод можно сохранить в файл и передать compile, validate или resolve.
func NewExampleCmd(outputFn func() *Output) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print a sample workflow document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			if !asYAML {
				out.Write(engine.ExampleDocument)
				return nil
			}

			doc, err := engine.Parse([]byte(engine.ExampleDocument), engine.SyntaxJSON)
			if err != nil {
				return err
			}
			b, err := yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			out.Write(string(b))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the sample as YAML")

	return cmd
}
