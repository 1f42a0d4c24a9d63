package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, video_id, playlist_item_id, title, source_url, status, artifact_dir, transcript_path, media_file, draft_title, draft_description, draft_confidence, draft_uncertain, soft_success, record_path, error_message, progress_stage, progress_message, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		videoID          string
		playlistItemID   sql.NullString
		title            sql.NullString
		sourceURL        string
		statusStr        string
		artifactDir      sql.NullString
		transcriptPath   sql.NullString
		mediaFile        sql.NullString
		draftTitle       sql.NullString
		draftDescription sql.NullString
		draftConfidence  sql.NullFloat64
		draftUncertain   sql.NullInt64
		softSuccess      sql.NullInt64
		recordPath       sql.NullString
		errorMessage     sql.NullString
		progressStage    sql.NullString
		progressMessage  sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&playlistItemID,
		&title,
		&sourceURL,
		&statusStr,
		&artifactDir,
		&transcriptPath,
		&mediaFile,
		&draftTitle,
		&draftDescription,
		&draftConfidence,
		&draftUncertain,
		&softSuccess,
		&recordPath,
		&errorMessage,
		&progressStage,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:               id,
		VideoID:          videoID,
		PlaylistItemID:   playlistItemID.String,
		Title:            title.String,
		SourceURL:        sourceURL,
		Status:           Status(statusStr),
		ArtifactDir:      artifactDir.String,
		TranscriptPath:   transcriptPath.String,
		MediaFile:        mediaFile.String,
		DraftTitle:       draftTitle.String,
		DraftDescription: draftDescription.String,
		DraftConfidence:  draftConfidence.Float64,
		RecordPath:       recordPath.String,
		ErrorMessage:     errorMessage.String,
		ProgressStage:    progressStage.String,
		ProgressMessage:  progressMessage.String,
	}
	if draftUncertain.Valid {
		item.DraftUncertain = draftUncertain.Int64 != 0
	}
	if softSuccess.Valid {
		item.SoftSuccess = softSuccess.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
