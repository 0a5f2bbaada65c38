// Package whisperx shells out to WhisperX via uvx to transcribe
// extracted audio into timestamped segments.
package whisperx
