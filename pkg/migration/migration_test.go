package migration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/nodes"
	"github.com/mattsolo1/grove-board/pkg/service"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := service.DefaultConfig(t.TempDir())
	cfg.Storage.Backend = service.StorageMemory
	svc, err := service.New(context.Background(), cfg, service.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return svc
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func notebook(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "inbox.md"), "# Inbox\n\nbuy milk\n")
	writeFile(t, filepath.Join(dir, "learn", "go.md"), "---\ntitle: Go\n---\nchannels\n")
	writeFile(t, filepath.Join(dir, "learn", "deep", "gc.md"), "# GC\n")
	writeFile(t, filepath.Join(dir, "learn", "empty.md"), "  \n")
	writeFile(t, filepath.Join(dir, "learn", "notes.txt"), "not markdown")
	writeFile(t, filepath.Join(dir, ".archive", "old.md"), "# Old\n")
	return dir
}

func titles(ns []*nodes.Node) []string {
	var out []string
	for _, n := range ns {
		out = append(out, n.Data().Get(models.FieldTitle))
	}
	return out
}

func TestMigrate(t *testing.T) {
	svc := newService(t)
	dir := notebook(t)

	report, err := Migrate(svc, dir, svc.Root(), MigrationOptions{SkipHidden: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalFiles)
	assert.Equal(t, 3, report.ImportedFiles)
	assert.Equal(t, 1, report.SkippedFiles)
	assert.Zero(t, report.FailedFiles)
	assert.Equal(t, 2, report.CreatedContainers)
	assert.False(t, report.EndTime.Before(report.StartTime))

	root := svc.Root()
	require.Equal(t, []string{"Inbox", "learn"}, titles(root.Children()))

	learn := root.ChildAt(1)
	assert.Equal(t, models.NodeTypeDropBar, learn.Type())
	require.Equal(t, []string{"deep", "Go"}, titles(learn.Children()))
	assert.Equal(t, []string{"GC"}, titles(learn.ChildAt(0).Children()))
	assert.Equal(t, "channels\n", learn.ChildAt(1).Data().Get(models.FieldContent))
}

func TestMigrateIncludesHidden(t *testing.T) {
	svc := newService(t)

	report, err := Migrate(svc, notebook(t), svc.Root(), MigrationOptions{Container: models.NodeTypeFolder}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, report.TotalFiles)
	assert.Equal(t, 4, report.ImportedFiles)
	assert.Equal(t, 3, report.CreatedContainers)
	assert.Equal(t, models.NodeTypeFolder, svc.Root().ChildAt(0).Type())
}

func TestMigrateDryRun(t *testing.T) {
	svc := newService(t)
	var out bytes.Buffer

	report, err := Migrate(svc, notebook(t), svc.Root(), MigrationOptions{DryRun: true, SkipHidden: true}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, report.ImportedFiles)
	assert.Zero(t, report.CreatedContainers)
	assert.Contains(t, out.String(), "Would import learn/go.md")
	assert.Equal(t, 1, svc.Store().Len(), "only the root exists")
}

func TestMigrateRecordsFailures(t *testing.T) {
	svc := newService(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.md"), "---\ntype: spaceship\n---\nbody\n")
	writeFile(t, filepath.Join(dir, "good.md"), "# Good\n")

	var out bytes.Buffer
	report, err := Migrate(svc, dir, svc.Root(), MigrationOptions{Verbose: true}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ImportedFiles)
	assert.Equal(t, 1, report.FailedFiles)
	assert.ErrorIs(t, report.ProcessingErrors["bad.md"], models.ErrInvalidType)
	assert.Contains(t, out.String(), "Error processing bad.md")
}

func TestMigrateMissingDirectory(t *testing.T) {
	svc := newService(t)
	_, err := Migrate(svc, filepath.Join(t.TempDir(), "nope"), svc.Root(), MigrationOptions{}, nil)
	assert.Error(t, err)
}
