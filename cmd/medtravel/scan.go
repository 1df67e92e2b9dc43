package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/page"
)

type scanOptions struct {
	root    string
	diff    string
	jsonOut bool
}

func newScanCmd() *cobra.Command {
	o := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [file.html]",
		Short: "List the text a translation pass would pick up",
		Long: `Scan an HTML page (or stdin) and list the eligible text nodes without
calling any provider. With --diff, compare against a previous version of the
page and list what would need translating.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, name, err := readDocument(args)
			if err != nil {
				return err
			}
			nodes := textNodes(page.NewScanner(rootOption(o.root)...).Scan(doc))

			if o.diff != "" {
				old, err := page.ParseFile(o.diff)
				if err != nil {
					return fmt.Errorf("reading previous version: %w", err)
				}
				oldNodes := textNodes(page.NewScanner(rootOption(o.root)...).Scan(old))
				return printDiff(cmd.OutOrStdout(), name, filepath.Base(o.diff), medtravel.DiffNodes(oldNodes, nodes), o.jsonOut)
			}
			return printScan(cmd.OutOrStdout(), name, nodes, o.jsonOut)
		},
	}

	cmd.Flags().StringVar(&o.root, "root", "", "CSS selector of the content root (default: main, then body)")
	cmd.Flags().StringVar(&o.diff, "diff", "", "Previous version of the page to compare with")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

func rootOption(selector string) []page.ScannerOption {
	if selector == "" {
		return nil
	}
	return []page.ScannerOption{page.WithRootSelector(selector)}
}

func textNodes(scanned []page.ScannedNode) []medtravel.TextNode {
	out := make([]medtravel.TextNode, len(scanned))
	for i, n := range scanned {
		out[i] = n.TextNode
	}
	return out
}

func printScan(w io.Writer, name string, nodes []medtravel.TextNode, jsonOut bool) error {
	if jsonOut {
		type scanOutput struct {
			InputFile string   `json:"input_file"`
			NodeCount int      `json:"node_count"`
			Texts     []string `json:"texts"`
		}
		out := scanOutput{InputFile: name, NodeCount: len(nodes), Texts: make([]string, len(nodes))}
		for i, n := range nodes {
			out.Texts[i] = n.Text
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Scan: %s\n", name)
	fmt.Fprintf(w, "Found %d translatable text nodes:\n\n", len(nodes))
	for i, n := range nodes {
		fmt.Fprintf(w, "%3d. %q\n", i+1, truncate(n.Text, 60))
		if tag := n.Metadata["parent_tag"]; tag != "" {
			fmt.Fprintf(w, "     <%s> %s\n", tag, n.Path)
		}
	}
	return nil
}

func printDiff(w io.Writer, name, prevName string, diff *medtravel.DiffResult, jsonOut bool) error {
	stats := diff.Stats()

	if jsonOut {
		type modified struct {
			Old string `json:"old"`
			New string `json:"new"`
		}
		type diffOutput struct {
			InputFile    string              `json:"input_file"`
			PreviousFile string              `json:"previous_file"`
			Stats        medtravel.DiffStats `json:"stats"`
			Needs        []string            `json:"needs_translation"`
			Added        []string            `json:"added,omitempty"`
			Removed      []string            `json:"removed,omitempty"`
			Modified     []modified          `json:"modified,omitempty"`
		}
		out := diffOutput{InputFile: name, PreviousFile: prevName, Stats: stats, Needs: []string{}}
		for _, n := range diff.NeedsTranslation() {
			out.Needs = append(out.Needs, n.Text)
		}
		for _, n := range diff.Added {
			out.Added = append(out.Added, n.Text)
		}
		for _, n := range diff.Removed {
			out.Removed = append(out.Removed, n.Text)
		}
		for _, m := range diff.Modified {
			out.Modified = append(out.Modified, modified{Old: m.Old.Text, New: m.New.Text})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Diff: %s vs %s\n\n", name, prevName)
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(w, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(w, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(w, "  Modified:  %d\n\n", stats.Modified)

	if !diff.HasChanges() {
		fmt.Fprintf(w, "No changes detected. All translations are up to date.\n")
		return nil
	}

	fmt.Fprintf(w, "Needs translation: %d strings\n\n", len(diff.NeedsTranslation()))
	for _, n := range diff.Added {
		fmt.Fprintf(w, "  + %q\n", truncate(n.Text, 50))
	}
	for _, m := range diff.Modified {
		fmt.Fprintf(w, "  ~ %q -> %q\n", truncate(m.Old.Text, 30), truncate(m.New.Text, 30))
	}
	for _, n := range diff.Removed {
		fmt.Fprintf(w, "  - %q\n", truncate(n.Text, 50))
	}
	return nil
}
