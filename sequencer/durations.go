package sequencer

// Note lengths in timeline units for 4/4 time, where one measure is 1.0.
const (
	Measure      = 1.0
	Whole        = Measure
	Half         = Whole / 2
	Quarter      = Whole / 4
	Eighth       = Whole / 8
	Sixteenth    = Whole / 16
	ThirtySecond = Whole / 32
	SixtyFourth  = Whole / 64
)

// Triplet returns the length of one note of a triplet spanning two notes of
// length d.
func Triplet(d float64) float64 { return d * 2 / 3 }

// SpeedForBPM returns the pattern speed that plays quarter notes at bpm
// beats per minute, with time measured in seconds.
func SpeedForBPM(bpm float64) float64 { return bpm / 240 }
