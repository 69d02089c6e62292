package video

// Mode selects how the video is modified once a hit is found
type Mode string

const (
	// ModeTruncate keeps everything before the hit
	ModeTruncate Mode = "truncate"

	// ModeDrop removes only the hit frames (unavailable)
	ModeDrop Mode = "drop"
)

// SelectMode resolves the mode flags; truncate takes precedence over drop
func SelectMode(truncate, drop bool) (Mode, error) {
	switch {
	case truncate:
		return ModeTruncate, nil
	case drop:
		return ModeDrop, nil
	default:
		return "", ErrNoMode
	}
}
