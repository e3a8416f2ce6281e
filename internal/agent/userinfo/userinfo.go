// Package userinfo resolves user-local facts the capability nodes report
// on, currently the user's local time.
package userinfo

import (
	"fmt"
	"time"
)

// Clock abstracts the time source so node behavior is testable.
type Clock func() time.Time

// Provider answers user-local questions from the conversation profile.
type Provider struct {
	now Clock
}

func New() *Provider {
	return &Provider{now: time.Now}
}

// NewWithClock builds a provider with a fixed time source.
func NewWithClock(clock Clock) *Provider {
	return &Provider{now: clock}
}

// LocalTime formats the current time in the user's timezone. An empty or
// unknown timezone falls back to UTC and says so in the reply.
func (p *Provider) LocalTime(timezone string) (reply string, checkedAt string) {
	now := p.now()
	loc, err := time.LoadLocation(timezone)
	if timezone == "" || err != nil {
		utc := now.UTC()
		reply = fmt.Sprintf(
			"I don't know your timezone yet, so here is the current time in UTC: %s.",
			utc.Format("Monday, 02 January 2006 15:04"),
		)
		return reply, utc.Format(time.RFC3339)
	}
	local := now.In(loc)
	reply = fmt.Sprintf(
		"It's currently %s in %s.",
		local.Format("Monday, 02 January 2006 15:04"), timezone,
	)
	return reply, local.Format(time.RFC3339)
}
