package model

// DiscoveryResult is the outcome of resource discovery: the topic's canonical
// (self) URL and every advertised hub, in order of appearance.
type DiscoveryResult struct {
	Topic string
	Hubs  []string
}

// Hub returns the first advertised hub, which is the one the client
// subscribes through. Callers that want hub fallback must re-discover.
func (d *DiscoveryResult) Hub() string {
	if len(d.Hubs) == 0 {
		return ""
	}
	return d.Hubs[0]
}

// Reference returns the (hub, topic) pair a subscription request should
// target.
func (d *DiscoveryResult) Reference() TopicReference {
	return TopicReference{Hub: d.Hub(), Topic: d.Topic}
}
