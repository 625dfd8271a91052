package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowgraph/internal/engine"
)

// ErrIssuesFound — документ содержит неразрешённые ссылки.
// Команда validate возвращает её, чтобы процесс завершился с кодом 1.
var ErrIssuesFound = errors.New("unresolved parameter references found")

// NewValidateCmd создаёт команду validate.
func NewValidateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a workflow document for unresolved parameter references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			data, syntax, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			var resp *ValidateResponse
			if client := clientFn(); client != nil {
				if resp, err = client.Validate(data, syntax); err != nil {
					return err
				}
			} else {
				doc, err := engine.Parse(data, syntax)
				if err != nil {
					return err
				}
				issues := engine.ValidateReferences(doc)
				resp = &ValidateResponse{Valid: len(issues) == 0, Issues: issues}
			}

			if out.JSONMode() {
				out.JSON(resp)
			} else if len(resp.Issues) > 0 {
				out.Issues(resp.Issues)
			} else {
				out.Success("OK: all parameter references resolve")
			}

			if len(resp.Issues) > 0 {
				return fmt.Errorf("%w: %d", ErrIssuesFound, len(resp.Issues))
			}
			return nil
		},
	}
}
