// Package migration imports an existing notebook directory into a board.
//
// Every subdirectory becomes a container node titled after the directory and
// every markdown file is imported under the container of its directory.
package migration

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/nodes"
)

// Importer is the part of the board service a migration needs.
type Importer interface {
	CreateNode(t models.NodeType, data map[string]string, parent nodes.Ref) (*nodes.Node, error)
	ImportMarkdown(content string, parent nodes.Ref) (*nodes.Node, error)
}

type Migrator struct {
	imp     Importer
	options MigrationOptions
	output  io.Writer
	logger  logrus.FieldLogger
	report  *MigrationReport

	// containers maps a directory, relative to the base path, to its node.
	containers map[string]nodes.Ref
}

func NewMigrator(imp Importer, options MigrationOptions, output io.Writer, logger logrus.FieldLogger) *Migrator {
	if options.Container == "" {
		options.Container = models.NodeTypeDropBar
	}
	if output == nil {
		output = io.Discard
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Migrator{
		imp:        imp,
		options:    options,
		output:     output,
		logger:     logger.WithField("component", "migration"),
		report:     NewMigrationReport(),
		containers: make(map[string]nodes.Ref),
	}
}

// Migrate imports every markdown file below basePath under parent.
func Migrate(imp Importer, basePath string, parent nodes.Ref, options MigrationOptions, output io.Writer) (*MigrationReport, error) {
	migrator := NewMigrator(imp, options, output, nil)
	migrator.containers["."] = parent

	paths, err := collect(basePath, options.SkipHidden)
	if err != nil {
		return migrator.GetReport(), fmt.Errorf("failed to walk %s: %w", basePath, err)
	}
	migrator.report.TotalFiles = len(paths)

	for _, rel := range paths {
		if err := migrator.MigrateFile(basePath, rel); err != nil && options.Verbose {
			fmt.Fprintf(migrator.output, "✗ Error processing %s: %v\n", rel, err)
		}
	}

	migrator.Complete()
	return migrator.GetReport(), nil
}

// collect returns the markdown files below basePath, relative to it, sorted.
func collect(basePath string, skipHidden bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if skipHidden && path != basePath && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(basePath, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

// MigrateFile imports one file given relative to basePath.
func (m *Migrator) MigrateFile(basePath, rel string) error {
	content, err := os.ReadFile(filepath.Join(basePath, rel))
	if err != nil {
		m.report.AddError(rel, err)
		return err
	}
	if strings.TrimSpace(string(content)) == "" {
		m.report.SkippedFiles++
		if m.options.Verbose {
			fmt.Fprintf(m.output, "- Skipped empty file %s\n", rel)
		}
		return nil
	}

	if m.options.DryRun {
		m.report.ImportedFiles++
		fmt.Fprintf(m.output, "Would import %s\n", rel)
		return nil
	}

	parent, err := m.container(filepath.Dir(rel))
	if err != nil {
		m.report.AddError(rel, err)
		return err
	}
	n, err := m.imp.ImportMarkdown(string(content), parent)
	if err != nil {
		m.report.AddError(rel, err)
		return err
	}

	m.report.ImportedFiles++
	m.logger.WithFields(logrus.Fields{"file": rel, "node_id": n.ID()}).Debug("imported file")
	if m.options.Verbose {
		fmt.Fprintf(m.output, "✓ %s → %s\n", rel, n.ID())
	}
	return nil
}

// container returns the node for dir, creating it and its ancestors as needed.
func (m *Migrator) container(dir string) (nodes.Ref, error) {
	if ref, ok := m.containers[dir]; ok {
		return ref, nil
	}
	parent, err := m.container(filepath.Dir(dir))
	if err != nil {
		return nil, err
	}
	n, err := m.imp.CreateNode(m.options.Container, map[string]string{
		models.FieldTitle: filepath.Base(dir),
	}, parent)
	if err != nil {
		return nil, fmt.Errorf("create container for %s: %w", dir, err)
	}
	m.containers[dir] = n
	m.report.CreatedContainers++
	return n, nil
}

func (m *Migrator) GetReport() *MigrationReport {
	return m.report
}

func (m *Migrator) Complete() {
	m.report.Complete()
}
