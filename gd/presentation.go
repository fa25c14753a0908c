package gd

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/fitdump/garmindump/pkg/output"
)

// PresentationService handles all presentation logic, including the
// blocking interactive prompt loop around the pure selection resolver.
type PresentationService struct {
	ol    *output.OutputLogger
	stdin io.Reader
}

// NewPresentationService creates a new presentation service
func NewPresentationService(ol *output.OutputLogger) *PresentationService {
	return &PresentationService{ol: ol, stdin: os.Stdin}
}

// ShowProgress displays a progress message
func (ps *PresentationService) ShowProgress(msg string, args ...any) {
	ps.ol.Progress(msg, args...)
}

// ShowStatus displays a status message
func (ps *PresentationService) ShowStatus(msg string, args ...any) {
	ps.ol.Status(msg, args...)
}

// ShowError logs and displays an error
func (ps *PresentationService) ShowError(err error, msg string, args ...any) {
	ps.ol.LogAndShowError(err, msg, args...)
}

// PromptCategories presents the category menu and blocks until the operator
// submits a resolvable selection, re-prompting on parse and range errors.
// When no categories were detected the prompt is bypassed and everything is
// exported.
func (ps *PresentationService) PromptCategories(categories []string) (Selection, error) {
	if len(categories) == 0 {
		ps.ol.Status("No activity types detected; exporting every activity.")
		return Selection{All: true}, nil
	}

	ps.ol.Menu("Available activity types:", categories)
	reader := bufio.NewReader(ps.stdin)

	for {
		ps.ol.Prompt("Enter comma-separated numbers to export, or 'all' to download every type [all]: ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				// Closed stdin means no preference; export everything
				return Selection{All: true, Wanted: categorySet(categories)}, nil
			}
			return Selection{}, err
		}

		selection, rerr := ResolveSelection(categories, strings.TrimSpace(line))
		if rerr != nil {
			ps.ol.Warning("%s", rerr)
			continue
		}
		return selection, nil
	}
}

// ShowActivityResult displays the result of exporting an activity
func (ps *PresentationService) ShowActivityResult(activity Activity, result ExportResult) {
	switch {
	case result.Skipped:
		ps.ol.ActivityLine(result.ActivityID, result.FilePath, output.StateExists)
	case result.MissingID:
		ps.ol.ActivityLine(result.ActivityID, result.FilePath, output.StateMissingID)
	case result.Error != nil:
		ps.ol.ActivityLine(result.ActivityID, result.FilePath, output.StateError)
	default:
		ps.ol.ActivityLine(result.ActivityID, result.FilePath, output.StateDownloaded)
	}
}

// ShowFinalResults displays the final export summary
func (ps *PresentationService) ShowFinalResults(summary *ExportSummary, outputDir string) {
	ps.ol.Result("Exported %d activities to %s (%d skipped, %d without ID, %d errors)",
		summary.Written, outputDir, summary.Skipped, summary.MissingID, summary.Errors)
}

// ShowJSONResults outputs structured JSON results
func (ps *PresentationService) ShowJSONResults(summary *ExportSummary, outputDir string) {
	ps.ol.JSON(map[string]any{
		"summary": map[string]int{
			"written":    summary.Written,
			"skipped":    summary.Skipped,
			"missing_id": summary.MissingID,
			"errors":     summary.Errors,
		},
		"output_dir": outputDir,
	})
}
