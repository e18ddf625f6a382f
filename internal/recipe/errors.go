package recipe

import "errors"

var (
	// ErrGeneration is returned when the remote model call fails or yields no content.
	ErrGeneration = errors.New("generation failed")

	// ErrParse is returned when content came back but does not match the declared schema.
	ErrParse = errors.New("response does not match schema")

	// ErrNetwork marks transport failures. It is always reported together with
	// ErrGeneration, so callers that only check ErrGeneration see it too.
	ErrNetwork = errors.New("network failure")
)
