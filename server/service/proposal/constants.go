package proposal

// Package-level constants for proposal generation.

const (
	// DefaultHorizonDays is the number of forward-looking calendar days
	// considered when collecting candidate days.
	DefaultHorizonDays = 7

	// FallbackHorizonDays is the unfiltered window used when weekday
	// preferences eliminate every day in the horizon. Deliberately ignores
	// the weekday preference so at least one proposal can be produced.
	FallbackHorizonDays = 2

	// MaxProposals is the number of proposals generated when at least
	// three candidate days qualify.
	MaxProposals = 3

	// MinProposals is the number of proposals generated when fewer than
	// three candidate days qualify.
	MinProposals = 2

	// DefaultDurationMinutes is used when neither the caller nor the note
	// analysis supplies a duration.
	DefaultDurationMinutes = 60

	// DefaultMinBreakMinutes is the gap kept after a displaced-past meeting
	// when the user has not configured one.
	DefaultMinBreakMinutes = 30

	// Concrete hours assigned by the time-of-day resolver.
	MorningHour   = 9
	AfternoonHour = 14
	EveningHour   = 18

	// displacementExtraPasses pads the displacement iteration cap beyond
	// the number of existing meetings. One pass per meeting suffices when
	// displacement only moves forward; the padding absorbs degenerate input.
	displacementExtraPasses = 8
)
