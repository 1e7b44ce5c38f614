package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/nodes"
	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewExportCmd(svc **service.Service) *cobra.Command {
	var (
		dir      string
		children bool
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a node as markdown",
		Long: `Print a node as markdown with frontmatter, or write it to --dir. Files
already in --dir are updated in place and keep frontmatter keys the board
does not manage.

Examples:
  board export nd:kq2x1.3f.a
  board export root --dir ~/notes --children`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			n, err := resolve(s, args[0])
			if err != nil {
				return err
			}
			if dir == "" {
				md, err := s.ExportMarkdown(n)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			targets := []*nodes.Node{n}
			if children {
				targets = append(targets, n.Children()...)
			}
			for _, t := range targets {
				path, err := exportFile(s, t, dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", t.ID(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Write files into this directory")
	cmd.Flags().BoolVar(&children, "children", false, "Also export the node's direct children")

	return cmd
}

func exportFile(s *service.Service, n *nodes.Node, dir string) (string, error) {
	path := filepath.Join(dir, service.Filename(n))

	existing, err := os.ReadFile(path)
	var content []byte
	switch {
	case err == nil:
		content, err = s.ExportMarkdownInto(n, existing)
	case errors.Is(err, fs.ErrNotExist):
		var md string
		md, err = s.ExportMarkdown(n)
		content = []byte(md)
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", n.ID(), err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
