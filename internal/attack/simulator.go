// Package attack simulates the two attacks students run against the lab.
//
// Nothing here touches the network. A DoS run draws a delay and a
// packet-loss rate from the chosen intensity profile, pauses the calling
// goroutine for the delay and then rolls for a dropped attack. The
// unauthorized-access run is a pure function of the protection switches.
package attack

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrInvalidChoice is returned for an intensity outside low/medium/high.
var ErrInvalidChoice = errors.New("attack: invalid intensity choice")

// Intensity selects a DoS profile.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"

	// DefaultIntensity applies when the caller names none.
	DefaultIntensity = IntensityLow
)

// Profile bounds the uniform draws for one intensity. Delays are seconds.
type Profile struct {
	DelayMin, DelayMax float64
	LossMin, LossMax   float64
}

var profiles = map[Intensity]Profile{
	IntensityLow:    {DelayMin: 0.1, DelayMax: 0.3, LossMin: 0.0, LossMax: 0.1},
	IntensityMedium: {DelayMin: 0.3, DelayMax: 0.7, LossMin: 0.1, LossMax: 0.3},
	IntensityHigh:   {DelayMin: 0.7, DelayMax: 1.5, LossMin: 0.3, LossMax: 0.7},
}

// ProfileFor returns the profile for i.
func ProfileFor(i Intensity) (Profile, error) {
	p, ok := profiles[i]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrInvalidChoice, string(i))
	}
	return p, nil
}

// Source yields uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Sleeper pauses the calling goroutine.
type Sleeper func(time.Duration)

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() } //nolint:gosec // simulation, not crypto

// Simulator runs attacks. It holds no state of its own, so it is safe for
// concurrent use provided its Source is.
type Simulator struct {
	src   Source
	sleep Sleeper
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSource replaces the default math/rand/v2 source.
func WithSource(src Source) Option {
	return func(s *Simulator) { s.src = src }
}

// WithSleeper replaces time.Sleep.
func WithSleeper(sleep Sleeper) Option {
	return func(s *Simulator) { s.sleep = sleep }
}

// NewSimulator creates a Simulator.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{src: globalSource{}, sleep: time.Sleep}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.src.Float64()
}

// SimulateDoS runs a DoS attempt at intensity.
//
// With protection on the result is Blocked immediately, whatever the
// intensity. Otherwise an unknown intensity fails with ErrInvalidChoice
// before any draw; a known one draws delay then loss, sleeps for the
// delay, and finally drops the attack when a third draw is below loss.
func (s *Simulator) SimulateDoS(protected bool, intensity Intensity) (DoSResult, error) {
	if protected {
		return DoSResult{
			Outcome:   OutcomeBlocked,
			Intensity: intensity,
			Message:   "DoS Attack Blocked: Protection is enabled.",
		}, nil
	}

	p, err := ProfileFor(intensity)
	if err != nil {
		return DoSResult{}, err
	}

	delay := s.uniform(p.DelayMin, p.DelayMax)
	loss := s.uniform(p.LossMin, p.LossMax)

	s.sleep(time.Duration(delay * float64(time.Second)))

	res := DoSResult{
		Intensity:  intensity,
		Delay:      delay,
		PacketLoss: loss,
	}
	if s.src.Float64() < loss {
		res.Outcome = OutcomeDropped
		res.Message = "DoS Attack Dropped: Packet lost during attack."
		return res, nil
	}

	res.Outcome = OutcomeSuccess
	res.Message = fmt.Sprintf("DoS Attack Success: %d%% of packets got through!", res.PercentThrough())
	return res, nil
}

// SimulateUnauthorized is blocked only when both login validation and the
// ACL are on.
func (s *Simulator) SimulateUnauthorized(loginValidation, acl bool) UnauthorizedResult {
	if loginValidation && acl {
		return UnauthorizedResult{
			Outcome: OutcomeBlocked,
			Message: "Unauthorized Access Failed: Security measures are active.",
		}
	}
	return UnauthorizedResult{
		Outcome: OutcomeSuccess,
		Message: "Unauthorized Access Success: Security measures are disabled.",
	}
}
