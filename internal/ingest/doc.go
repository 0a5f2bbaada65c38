// Package ingest turns a video file into the raw signals extraction needs:
// a transcript and per-frame OCR text. Audio is pulled with ffmpeg as mono
// 16kHz WAV and frames are sampled at one per second; the transcription and
// OCR backends are pluggable interfaces so external binaries stay out of
// unit tests.
package ingest
