package cmd

import (
	"fmt"
	"os"

	"code.sajari.com/docconv/v2"
	"github.com/spf13/cobra"

	"github.com/btraven00/lectio/pkg/doi"
)

// pdfCmd represents the pdf command
var pdfCmd = &cobra.Command{
	Use:   "pdf <file>",
	Short: "Extract a DOI or arXiv identifier from a local PDF",
	Long: `Pdf converts a local PDF to text and scans it for a DOI, falling back
to an arXiv identifier. Handy for filing papers that reached you outside
the forum.

Examples:
  lectio pdf paper.pdf
  lectio pdf --output json preprint.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

type pdfResult struct {
	File  string `json:"file"`
	DOI   string `json:"doi,omitempty"`
	Arxiv string `json:"arxiv,omitempty"`
	Found bool   `json:"found"`
}

func runPDF(cmd *cobra.Command, args []string) error {
	filename := args[0]

	// Check if file exists and is readable
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	if !quiet {
		fmt.Fprintf(os.Stderr, "Extracting text from %s...\n", filename)
	}

	converted, err := docconv.ConvertPath(filename)
	if err != nil {
		return fmt.Errorf("failed to convert PDF file '%s': %w", filename, err)
	}

	result := pdfResult{File: filename}

	if id := doi.FromText(converted.Body); id != "" {
		result.DOI = id
		result.Found = true
	} else if id := doi.ArxivFromText(converted.Body); id != "" {
		result.Arxiv = id
		result.Found = true
	}

	if output == "json" {
		return outputJSON(result)
	}

	switch {
	case result.DOI != "":
		fmt.Printf("✅ DOI: %s\n", result.DOI)
	case result.Arxiv != "":
		fmt.Printf("✅ arXiv: %s\n", result.Arxiv)
	default:
		fmt.Println("❌ No DOI or arXiv identifier found")
	}

	return nil
}

func init() {
	rootCmd.AddCommand(pdfCmd)
}
