package gd

import (
	"fmt"
	"path/filepath"
)

// fitExt is the fixed extension of every exported file
const fitExt = ".fit"

// DestinationPath derives the output path for an activity. Two activities
// with the same identifier always map to the same path, which is what makes
// skip-existing meaningful across runs. Activities without an identifier
// get the literal "unknown" segment so path derivation stays total.
func DestinationPath(outputDir string, activity Activity) string {
	name := activity.Name
	if name == "" {
		name = "activity-" + activity.IDString()
	}
	return filepath.Join(outputDir, activity.IDString()+"_"+SanitizeName(name)+fitExt)
}

// ExportService handles the per-activity export logic without presentation
// concerns
type ExportService struct {
	downloader BlobDownloader
	fs         FileSystem
	logger     Logger

	// OnResult, when set, is called after each activity with its outcome
	OnResult func(activity Activity, result ExportResult)
}

// NewExportService creates a new export service
func NewExportService(downloader BlobDownloader, fs FileSystem, logger Logger) *ExportService {
	return &ExportService{
		downloader: downloader,
		fs:         fs,
		logger:     logger,
	}
}

// ExportActivity downloads, unwraps and writes a single activity. The
// destination and the skip-existing check come before the identifier check,
// so a pre-existing file short-circuits even for malformed records.
func (s *ExportService) ExportActivity(activity Activity, outputDir string, skipExisting bool) ExportResult {
	destination := DestinationPath(outputDir, activity)

	if skipExisting && s.fs.Exists(destination) {
		s.logger.Debug("skipping existing file", "path", destination)
		return ExportResult{
			ActivityID: activity.IDString(),
			FilePath:   destination,
			Skipped:    true,
		}
	}

	if activity.ID == nil {
		s.logger.Warn("skipping activity without an ID", "preview", activity.RawPreview(80))
		return ExportResult{
			ActivityID: activity.IDString(),
			FilePath:   destination,
			MissingID:  true,
		}
	}

	payload, err := s.downloader.DownloadActivity(*activity.ID)
	if err != nil {
		return ExportResult{
			ActivityID: activity.IDString(),
			FilePath:   destination,
			Error:      fmt.Errorf("failed to download activity %d: %w", *activity.ID, err),
		}
	}

	fitData, err := UnwrapFit(payload)
	if err != nil {
		return ExportResult{
			ActivityID: activity.IDString(),
			FilePath:   destination,
			Error:      fmt.Errorf("failed to unwrap activity %d: %w", *activity.ID, err),
		}
	}

	if err := s.fs.WriteFile(destination, fitData, 0644); err != nil {
		return ExportResult{
			ActivityID: activity.IDString(),
			FilePath:   destination,
			Error:      fmt.Errorf("failed to save activity %d: %w", *activity.ID, err),
		}
	}

	s.logger.Info("wrote activity file", "path", destination)
	return ExportResult{
		ActivityID: activity.IDString(),
		FilePath:   destination,
		Written:    true,
	}
}

// ExportActivities exports the activities in order and returns a summary.
// Skipped files and missing identifiers never count toward Written. A
// download, unwrap or write error aborts the run with the summary so far
// unless continueOnError is set, in which case it is recorded and the loop
// moves on.
func (s *ExportService) ExportActivities(activities []Activity, outputDir string, skipExisting, continueOnError bool) (*ExportSummary, error) {
	if err := s.fs.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &ExportSummary{}
	for _, activity := range activities {
		s.logger.Debug("processing activity", "activity_id", activity.IDString(), "category", activity.Category)

		result := s.ExportActivity(activity, outputDir, skipExisting)
		summary.Results = append(summary.Results, result)

		switch {
		case result.Written:
			summary.Written++
		case result.Skipped:
			summary.Skipped++
		case result.MissingID:
			summary.MissingID++
		case result.Error != nil:
			summary.Errors++
		}

		if s.OnResult != nil {
			s.OnResult(activity, result)
		}

		if result.Error != nil && !continueOnError {
			return summary, result.Error
		}
	}

	return summary, nil
}
