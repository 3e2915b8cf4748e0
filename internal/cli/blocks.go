package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitiral/rag/internal/parser"
	"github.com/vitiral/rag/internal/types"
)

var showDoc bool

// blocksCmd prints the blocks found in files
var blocksCmd = &cobra.Command{
	Use:   "blocks FILE...",
	Short: "Print the declaration blocks of files",
	Long: `Print one line per block: kind, name, byte span and signature separated
by tabs. A file whose blocks cannot be extracted is reported on stderr and
the remaining files are still printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBlocks,
}

func init() {
	blocksCmd.Flags().BoolVar(&showDoc, "doc", false, "print the doc comment below each block")
	rootCmd.AddCommand(blocksCmd)
}

func runBlocks(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := parser.NewRegistry()
	parser.RegisterDefaults(registry)
	extractor := parser.NewExtractor(registry)
	extractor.MaxBytes = cfg.Index.MaxFileBytes

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		if err := printBlocks(out, extractor, path, len(args) > 1); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func printBlocks(out io.Writer, extractor *parser.Extractor, path string, withPath bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(content)

	blocks, err := extractor.Extract(text)
	if err != nil {
		return err
	}

	for _, block := range blocks {
		if withPath {
			fmt.Fprintf(out, "%s\t", path)
		}
		fmt.Fprintln(out, formatBlock(block))

		if !showDoc {
			continue
		}
		if doc := parser.DocComment(text, block); doc != "" {
			for _, line := range strings.Split(doc, "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
	return nil
}

// formatBlock renders kind, name, span and signature separated by tabs. Line
// breaks in the signature are shown as spaces.
func formatBlock(block types.CodeBlock) string {
	sig := strings.Join(strings.Fields(block.Signature), " ")
	return fmt.Sprintf("%s\t%s\t%d-%d\t%s", block.Kind, block.Name, block.Span.Start, block.Span.End, sig)
}
