package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/Flowgraph/internal/domain"
	"github.com/shaiso/Flowgraph/internal/engine"
)

// NewResolveCmd создаёт команду resolve.
// Документ выводится в JSON, с --yaml — в YAML.
func NewResolveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "resolve FILE",
		Short: "Print the document with parameter references substituted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			data, syntax, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			var resolved *domain.Document
			if client := clientFn(); client != nil {
				if resolved, err = client.Resolve(data, syntax); err != nil {
					return err
				}
			} else {
				doc, err := engine.Parse(data, syntax)
				if err != nil {
					return err
				}
				resolved = engine.Resolve(doc)
			}

			if !asYAML {
				out.JSON(resolved)
				return nil
			}

			b, err := yaml.Marshal(resolved)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			out.Write(string(b))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the resolved document as YAML")

	return cmd
}
