/*
Package resilience provides per-host circuit breakers for outbound probes.

# Overview

Content type discovery issues a header-only request for every web
navigation. A host that keeps timing out would otherwise cost every
session pointed at it a full request timeout before the HTML fallback
kicks in. A tripped breaker makes those probes fail immediately instead.

# Usage

	hosts := resilience.NewHostBreakers(resilience.Settings{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	})

	err := hosts.For(u.Host).Call(func() error {
		return probe(ctx, u)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		// fall back without touching the network
	}

# States

	Closed --[threshold failures]-> Open --[cooldown]-> HalfOpen --[success]-> Closed
	                                                       |
	                                                   [failure]
	                                                       v
	                                                     Open
*/
package resilience
