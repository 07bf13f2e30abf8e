package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/camuig/sina-stock-bot/internal/config"
)

// Schedule is a parsed push trigger.
type Schedule struct {
	label string
	spec  string
	cron  cron.Schedule
}

// ParseTrigger turns a config trigger into a cron schedule.
func ParseTrigger(t config.Trigger) (Schedule, error) {
	spec, err := t.CronSpec()
	if err != nil {
		return Schedule{}, fmt.Errorf("trigger %q: %w", t.String(), err)
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return Schedule{}, fmt.Errorf("trigger %q: %w", t.String(), err)
	}
	return Schedule{label: t.String(), spec: spec, cron: sched}, nil
}

// ParseTriggers parses every trigger in order.
func ParseTriggers(triggers []config.Trigger) ([]Schedule, error) {
	out := make([]Schedule, 0, len(triggers))
	for _, t := range triggers {
		s, err := ParseTrigger(t)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (s Schedule) String() string {
	return s.label
}

// Spec is the five-field cron spec.
func (s Schedule) Spec() string {
	return s.spec
}

// Next returns the first firing time after t, in t's location.
func (s Schedule) Next(t time.Time) time.Time {
	return s.cron.Next(t)
}
