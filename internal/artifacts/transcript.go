package artifacts

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact file names the batch tool leaves in each output folder.
const (
	transcriptFile = "trans.srt"
	mediaFile      = "output_sub.mp4"
)

// Set is the harvested artifact set for one work item.
type Set struct {
	Dir            string
	TranscriptPath string
	MediaPath      string
	Transcript     string
}

// Harvest collects the expected artifacts from an output folder: the
// translated subtitle file (flattened to a transcript) and the subtitled
// media file.
func Harvest(dir string) (Set, error) {
	set := Set{Dir: dir}

	srtPath := filepath.Join(dir, transcriptFile)
	transcript, err := ExtractTranscript(srtPath)
	if err != nil {
		return set, fmt.Errorf("harvest transcript: %w", err)
	}
	set.TranscriptPath = srtPath
	set.Transcript = transcript

	mediaPath := filepath.Join(dir, mediaFile)
	if _, err := os.Stat(mediaPath); err != nil {
		return set, fmt.Errorf("harvest media: %w", err)
	}
	set.MediaPath = mediaPath
	return set, nil
}

// ExtractTranscript flattens an SRT subtitle file into continuous text: cue
// indices and timing lines drop out, cue text joins with single spaces.
func ExtractTranscript(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var parts []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isCueIndex(line) || strings.Contains(line, "-->") {
			continue
		}
		parts = append(parts, line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan subtitle file: %w", err)
	}
	return strings.Join(parts, " "), nil
}

func isCueIndex(line string) bool {
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(line) > 0
}
