package mailer

import (
	"repost/internal/queue"
)

// ReportForItem builds the success notification report from a finished item.
func ReportForItem(item *queue.Item) Report {
	return Report{
		ItemTitle:        item.Title,
		DraftTitle:       item.DraftTitle,
		DraftDescription: item.DraftDescription,
		RecordPath:       item.RecordPath,
		ArtifactDir:      item.ArtifactDir,
		SourceURL:        item.SourceURL,
		SoftSuccess:      item.SoftSuccess,
	}
}

// ReportForFailure builds the failure notification report.
func ReportForFailure(item *queue.Item, stage string, err error) Report {
	report := ReportForItem(item)
	report.Stage = stage
	if err != nil {
		report.Reason = err.Error()
	}
	return report
}
