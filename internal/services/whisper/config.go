package whisper

// Config captures runtime settings for the transcription engine.
type Config struct {
	// Binary is the faster-whisper CLI executable.
	Binary string
	// Model is the Whisper model size (tiny, base, small, medium, large-v3).
	Model string
	// Device selects inference hardware: auto, cuda, or cpu.
	Device string
	// TimeoutSeconds bounds a single inference call.
	TimeoutSeconds int
}

// Engine configuration constants. The beam and VAD settings mirror the
// values the pipeline was tuned with; they are not configurable.
const (
	DefaultBinary = "whisper-ctranslate2"
	DefaultModel  = "small"

	DeviceAuto = "auto"
	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"

	CUDAComputeType = "int8_float16"
	CPUComputeType  = "int8"

	BeamSize     = "5"
	BestOf       = "5"
	OutputFormat = "json"

	// cudaProbeBinary present on PATH is the signal that a usable GPU
	// driver stack exists.
	cudaProbeBinary = "nvidia-smi"
)
