package config

const (
	defaultStagingDir         = "~/.local/share/wayfinder/staging"
	defaultLogDir             = "~/.local/share/wayfinder/logs"
	defaultLogRetentionDays   = 60
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultOllamaBaseURL      = "http://localhost:11434"
	defaultOllamaModel        = "llama3.1"
	defaultOllamaConnect      = 5
	defaultOllamaRead         = 120
	defaultOllamaMaxRetries   = 2
	defaultOllamaBackoff      = 2.0
	defaultOllamaMaxInput     = 40000
	defaultOllamaMaxPrompt    = 48000
	defaultGeocodeURL         = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultTextSearchURL      = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	defaultBiasRadiusMeters   = 50000
	defaultResolveConcurrency = 4
	defaultPlacesTimeout      = 10
	defaultMaxSegments        = 120
	defaultMaxCandidates      = 15
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Ollama: Ollama{
			Enabled:        true,
			BaseURL:        defaultOllamaBaseURL,
			Model:          defaultOllamaModel,
			ConnectTimeout: defaultOllamaConnect,
			ReadTimeout:    defaultOllamaRead,
			MaxRetries:     defaultOllamaMaxRetries,
			BackoffSeconds: defaultOllamaBackoff,
			MaxInputChars:  defaultOllamaMaxInput,
			MaxPromptChars: defaultOllamaMaxPrompt,
		},
		Places: Places{
			GeocodeURL:         defaultGeocodeURL,
			SearchURL:          defaultTextSearchURL,
			BiasRadiusMeters:   defaultBiasRadiusMeters,
			ResolveConcurrency: defaultResolveConcurrency,
			RequestTimeout:     defaultPlacesTimeout,
		},
		Extraction: Extraction{
			MaxSegments:   defaultMaxSegments,
			MaxCandidates: defaultMaxCandidates,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
