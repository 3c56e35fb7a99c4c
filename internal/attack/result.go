package attack

// Outcome is how a simulated attack ended, from the attacker's side.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeBlocked Outcome = "blocked"
	OutcomeDropped Outcome = "dropped"
)

// DoSResult describes one DoS run. Delay is in seconds and is zero when
// the attack was blocked.
type DoSResult struct {
	Outcome    Outcome
	Intensity  Intensity
	Delay      float64
	PacketLoss float64
	Message    string
}

// Succeeded reports whether the attack got through.
func (r DoSResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// PercentThrough is the whole percentage of packets that got through,
// truncated.
func (r DoSResult) PercentThrough() int {
	return int((1 - r.PacketLoss) * 100) //nolint:mnd // percent
}

// UnauthorizedResult describes one unauthorized-access run.
type UnauthorizedResult struct {
	Outcome Outcome
	Message string
}

// Succeeded reports whether the attack got through.
func (r UnauthorizedResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}
