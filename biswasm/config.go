package biswasm

// Interpolation modes understood by resampleImageWASM.
const (
	InterpolationNearest = 0
	InterpolationLinear  = 1
	InterpolationCubic   = 3
)

// Config is the JSON parameter object of resampleImageWASM.
type Config struct {
	Spacing         [3]float64 `json:"spacing"`
	Interpolation   int        `json:"interpolation"`
	BackgroundValue float64    `json:"backgroundValue"`
}
