// Package artifacts resolves the batch tool's per-video output folder and
// harvests the files the rest of the pipeline needs: the translated subtitle
// transcript and the subtitled media file.
package artifacts
