package migration

import (
	"time"

	"github.com/mattsolo1/grove-board/pkg/models"
)

type MigrationOptions struct {
	// Container is the node type created for each subdirectory.
	Container  models.NodeType
	DryRun     bool
	Verbose    bool
	SkipHidden bool
}

type MigrationReport struct {
	TotalFiles        int
	ImportedFiles     int
	SkippedFiles      int
	FailedFiles       int
	CreatedContainers int
	ProcessingErrors  map[string]error
	StartTime         time.Time
	EndTime           time.Time
}

func NewMigrationReport() *MigrationReport {
	return &MigrationReport{
		ProcessingErrors: make(map[string]error),
		StartTime:        time.Now(),
	}
}

func (r *MigrationReport) AddError(file string, err error) {
	r.ProcessingErrors[file] = err
	r.FailedFiles++
}

func (r *MigrationReport) Complete() {
	r.EndTime = time.Now()
}

func (r *MigrationReport) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
