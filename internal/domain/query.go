package domain

// Defaults for answer requests. Callers may omit any parameter;
// Normalize fills in the documented default.
const (
	DefaultTopK            = 3
	MaxTopK                = 20
	DefaultTemperature     = 0.2
	DefaultTopP            = 0.9
	DefaultMaxOutputTokens = 768
	MaxOutputTokensCap     = 4096
)

// QueryParams holds retrieval width and generation parameters for an
// answer request. Zero values mean "use the default"; TopK uses a
// pointer so that an explicit 0 (ungrounded mode) is distinguishable
// from an omitted value.
type QueryParams struct {
	TopK            *int
	Temperature     float32
	TopP            float32
	MaxOutputTokens int
}

// Normalize returns a copy with defaults applied.
func (p QueryParams) Normalize() QueryParams {
	out := p
	if out.TopK == nil {
		k := DefaultTopK
		out.TopK = &k
	}
	if out.Temperature == 0 {
		out.Temperature = DefaultTemperature
	}
	if out.TopP == 0 {
		out.TopP = DefaultTopP
	}
	if out.MaxOutputTokens == 0 {
		out.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return out
}

// Validate checks parameter ranges. Call after Normalize.
func (p QueryParams) Validate() error {
	if p.TopK != nil {
		if *p.TopK < 0 {
			return NewDomainError(ErrCodeValidation, "top_k must not be negative")
		}
		if *p.TopK > MaxTopK {
			return NewDomainError(ErrCodeValidation, "top_k exceeds maximum")
		}
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return NewDomainError(ErrCodeValidation, "temperature must be in [0, 2]")
	}
	if p.TopP <= 0 || p.TopP > 1 {
		return NewDomainError(ErrCodeValidation, "top_p must be in (0, 1]")
	}
	if p.MaxOutputTokens < 0 || p.MaxOutputTokens > MaxOutputTokensCap {
		return NewDomainError(ErrCodeValidation, "max_output_tokens out of range")
	}
	return nil
}

// K returns the effective retrieval width.
func (p QueryParams) K() int {
	if p.TopK == nil {
		return DefaultTopK
	}
	return *p.TopK
}
