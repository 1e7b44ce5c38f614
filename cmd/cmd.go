// Package cmd holds the board's subcommands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/nodes"
	"github.com/mattsolo1/grove-board/pkg/service"
)

const skipServiceAnnotation = "board.skip-service"

// AddCommands registers every subcommand on root.
func AddCommands(root *cobra.Command, svc **service.Service) {
	root.AddCommand(NewNewCmd(svc))
	root.AddCommand(NewSetCmd(svc))
	root.AddCommand(NewAddCmd(svc))
	root.AddCommand(NewDetachCmd(svc))
	root.AddCommand(NewRmCmd(svc))
	root.AddCommand(NewSearchCmd(svc))
	root.AddCommand(NewTreeCmd(svc))
	root.AddCommand(NewShowCmd(svc))
	root.AddCommand(NewImportCmd(svc))
	root.AddCommand(NewExportCmd(svc))
	root.AddCommand(NewMigrateCmd(svc))
	root.AddCommand(NewKeysCmd(svc))
	root.AddCommand(NewResetCmd(svc))
	root.AddCommand(NewVersionCmd())
}

// SkipsService reports whether c runs without opening the board.
func SkipsService(c *cobra.Command) bool {
	_, ok := c.Annotations[skipServiceAnnotation]
	return ok
}

// resolve looks up a node by id. "root" and "" name the root folder.
func resolve(s *service.Service, arg string) (*nodes.Node, error) {
	if arg == "" || arg == "root" {
		return s.Root(), nil
	}
	if !nodes.IsNodeID(arg) {
		return nil, fmt.Errorf("%q is not a node id", arg)
	}
	return s.Node(arg)
}

// parseFields turns key=value arguments into a data map.
func parseFields(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		out[key] = value
	}
	return out, nil
}

// label formats a node for one-line output.
func label(n *nodes.Node) string {
	title := n.Data().Get(models.FieldTitle)
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s [%s %s]", title, n.Type(), n.ID())
}
