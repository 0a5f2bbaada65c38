// Package ingester implements the first workflow stage: it extracts a
// mono audio track and 1-fps frame samples from the source video,
// transcribes the audio, OCRs the frames, and persists both result
// sets on the queue job.
package ingester
