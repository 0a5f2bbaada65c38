package whisperx

// Config captures runtime settings for WhisperX transcription.
type Config struct {
	// Model is the WhisperX model to use (e.g., "small", "large-v3").
	Model string
	// Language pins the transcription language; empty lets WhisperX detect.
	Language string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
}

// WhisperX configuration constants.
const (
	DefaultModel   = "small"
	PypiIndexURL   = "https://pypi.org/simple"
	CUDAIndexURL   = "https://download.pytorch.org/whl/cu128"
	BatchSize      = "4"
	OutputFormat   = "json"
	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"
)

// UVXCommand launches WhisperX through uv's tool runner.
const UVXCommand = "uvx"
