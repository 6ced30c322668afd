package events

// KindCaptureLevelUpdated identifies a new microphone level sample.
const KindCaptureLevelUpdated Kind = "capture.level_updated"

// CaptureLevelUpdated carries the microphone level in [0,1].
type CaptureLevelUpdated struct {
	Base
	Level float64
}

// NewCaptureLevelUpdated creates a level updated event.
func NewCaptureLevelUpdated(level float64) CaptureLevelUpdated {
	return CaptureLevelUpdated{Base: NewBase(KindCaptureLevelUpdated), Level: level}
}
