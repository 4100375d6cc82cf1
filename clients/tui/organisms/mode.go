package organisms

// Mode tells where key presses are applied.
type Mode int

const (
	ModeLocal  Mode = iota // in-process calculator
	ModeRemote             // pad on a calcpad gateway
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}
