package domain

import "errors"

// Error kinds surfaced by the engine. Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	ErrConfig          = errors.New("configuration error")
	ErrDataUnavailable = errors.New("data unavailable")
	ErrCorruptData     = errors.New("corrupt data")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Kind classifies an error for programmatic handling.
type Kind int

const (
	KindNone Kind = iota
	KindUnknown
	KindConfig
	KindDataUnavailable
	KindCorruptData
	KindInvalidState
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfig:
		return "config_error"
	case KindDataUnavailable:
		return "data_unavailable"
	case KindCorruptData:
		return "corrupt_data"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of err, KindNone for nil and KindUnknown for
// errors that do not wrap one of the sentinels.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrCorruptData):
		return KindCorruptData
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	default:
		return KindUnknown
	}
}
