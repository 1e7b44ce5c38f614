package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewNewCmd(svc **service.Service) *cobra.Command {
	var (
		parentID  string
		content   string
		fields    []string
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "new <type> [title]",
		Short: "Create a node",
		Long: `Create a notebox, dropbar or folder and attach it to a container.

Examples:
  board new notebox "call dentist"            # Note in the root folder
  board new dropbar Today                     # Bar in the root folder
  board new notebox idea -p nd:kq2x1.3f.a     # Note inside a bar
  board new notebox -c "body text" title      # Note with content
  echo "pasted" | board new notebox --stdin   # Content from stdin`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			t, err := models.ParseNodeType(args[0])
			if err != nil {
				return err
			}
			data, err := parseFields(fields)
			if err != nil {
				return err
			}
			if len(args) > 1 {
				data[models.FieldTitle] = args[1]
			}
			if fromStdin {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				content = string(b)
			}
			if content != "" {
				data[models.FieldContent] = content
			}

			parent, err := resolve(s, parentID)
			if err != nil {
				return err
			}
			n, err := s.CreateNode(t, data, parent)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), n.ID())
			return nil
		},
	}

	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "Container to attach to (default: root folder)")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Content of the node")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Extra key=value field (repeatable)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read content from stdin")

	return cmd
}
