package twoslash

// Code classifies a processing diagnostic. Diagnostics travel with the
// annotation list so callers and tests can assert on failure reasons
// instead of scraping log output.
type Code string

const (
	// CodeDisabled: twoslash processing is not enabled for this
	// process; no analysis was attempted.
	CodeDisabled Code = "disabled"
	// CodeManifest: manifest resolution or augmentation trouble;
	// analysis proceeded with reduced context.
	CodeManifest Code = "manifest"
	// CodeEngineUnavailable: the engine could not be constructed or
	// died earlier; the call degraded to an empty annotation list.
	CodeEngineUnavailable Code = "engine_unavailable"
	// CodeAnalysis: the engine rejected the program (parse or type
	// failure) or faulted internally on this call.
	CodeAnalysis Code = "analysis"
)

// Diagnostic describes one recovered failure during snippet processing.
type Diagnostic struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}
