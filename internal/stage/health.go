package stage

// Health is the outcome of one stage's readiness probe. Detail is set only
// when the probe fails and names the missing resource.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports a stage whose resources are all reachable.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports a stage that cannot run, with the reason.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
