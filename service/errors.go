package service

import "errors"

var (
	// ErrInvalidDog rejects a submission with neither a name nor an image.
	ErrInvalidDog = errors.New("name or image is required")
	// ErrStorageUnavailable covers missing settings, failed connects and schema errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrEmpty means storage answered but holds no rows.
	ErrEmpty = errors.New("no dogs stored yet")
	// ErrWrite is a failed insert after the connection was ready.
	ErrWrite = errors.New("failed to save dog")
	// ErrUpstream is a failed or malformed external API call.
	ErrUpstream = errors.New("dog api unavailable")
)

// sentinelError keeps a detailed message while matching a sentinel under errors.Is.
type sentinelError struct {
	msg      string
	sentinel error
}

func (e sentinelError) Error() string {
	return e.msg
}

func (e sentinelError) Unwrap() error {
	return e.sentinel
}

func wrapSentinel(msg string, sentinel error) error {
	return sentinelError{msg: msg, sentinel: sentinel}
}

// fallsThrough reports whether the chain may try the next tier after err.
func fallsThrough(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrUpstream)
}
