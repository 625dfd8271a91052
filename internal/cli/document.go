package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowgraph/internal/engine"
)

// stdinPath — аргумент FILE для чтения документа из stdin.
const stdinPath = "-"

// readDocument читает документ из файла или stdin.
// Синтаксис определяется по расширению, для stdin — по содержимому.
func readDocument(cmd *cobra.Command, path string) ([]byte, engine.Syntax, error) {
	if path == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, engine.SyntaxAuto, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}

	return data, engine.SyntaxFromFilename(path), nil
}
