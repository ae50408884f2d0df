// Package eventstest provides an in-memory Publisher for tests.
package eventstest

import (
	"context"
	"sync"
)

type Event struct {
	Topic   string
	Key     string
	Payload any
}

// Recorder keeps every published event in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, topic, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Event{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Topic returns the events published to topic.
func (r *Recorder) Topic(topic string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
