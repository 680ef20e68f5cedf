package advisory

import "strings"

// #region channels

// Channel names as recorded by the host framework.
const (
	ChannelCombinedControl = "TCAS Combined Control"
	ChannelUpAdvisory      = "TCAS Up Advisory"
	ChannelDownAdvisory    = "TCAS Down Advisory"
	ChannelVerticalControl = "TCAS Vertical Control"
	ChannelSensitivity     = "TCAS Sensitivity Level"
	ChannelRA              = "TCAS RA"
)

// #endregion channels

// #region combined-control

// Combined Control states.
const (
	NoAdvisory             = "No Advisory"
	ClearOfConflict        = "Clear of Conflict"
	DropTrack              = "Drop Track"
	AltitudeLost           = "Altitude Lost"
	UpAdvisoryCorrective   = "Up Advisory Corrective"
	DownAdvisoryCorrective = "Down Advisory Corrective"
	Preventive             = "Preventive"
)

// RAStates are the Combined Control states that count as an active resolution advisory.
var RAStates = []string{DropTrack, AltitudeLost, UpAdvisoryCorrective, DownAdvisoryCorrective}

// #endregion combined-control

// #region sub-commands

// Up and Down Advisory states.
const (
	NoUpAdvisory   = "No Up Advisory"
	Climb          = "Climb"
	DontDescend    = "Don't Descend"
	NoDownAdvisory = "No Down Advisory"
	Descend        = "Descend"
	DontClimb      = "Don't Climb"
)

// Vertical Control states.
const (
	Crossing = "Crossing"
	Reversal = "Reversal"
	Increase = "Increase"
	Maintain = "Maintain"
)

// #endregion sub-commands

// #region command

// Command is the advisory state at one sample across all four channels.
type Command struct {
	Combined string
	Up       string
	Down     string
	Vertical string
}

// SameTriple reports whether the Combined/Up/Down labels match. Vertical Control is
// not part of the change key.
func (c Command) SameTriple(o Command) bool {
	return c.Combined == o.Combined && c.Up == o.Up && c.Down == o.Down
}

// UpActive reports whether an up-sense advisory is in effect. A masked sub-label
// ("") carries no sense on its own.
func (c Command) UpActive() bool {
	return c.Combined == UpAdvisoryCorrective || (c.Up != "" && !strings.EqualFold(c.Up, NoUpAdvisory))
}

// DownActive reports whether a down-sense advisory is in effect.
func (c Command) DownActive() bool {
	return c.Combined == DownAdvisoryCorrective || (c.Down != "" && !strings.EqualFold(c.Down, NoDownAdvisory))
}

// Cleared reports whether the advisory has ended.
func (c Command) Cleared() bool {
	return c.Combined == ClearOfConflict || c.Combined == NoAdvisory
}

// Holding reports whether the state keeps the current response unchanged.
func (c Command) Holding() bool {
	switch c.Combined {
	case Preventive, DropTrack, AltitudeLost:
		return true
	}
	return false
}

// IsReversal reports whether Vertical Control signals a sense reversal.
func (c Command) IsReversal() bool {
	return c.Vertical == Reversal
}

// #endregion command
