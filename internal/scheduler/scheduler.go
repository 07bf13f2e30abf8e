package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/camuig/sina-stock-bot/internal/command"
	"github.com/camuig/sina-stock-bot/internal/logger"
	"github.com/camuig/sina-stock-bot/internal/storage"
	"github.com/camuig/sina-stock-bot/internal/subscription"
)

// Host is a chat platform the scheduler can push to.
//
//go:generate mockgen -package=scheduler -destination=mock_host_test.go -source=scheduler.go Host
type Host interface {
	command.Sender
	ActiveGroups(ctx context.Context) ([]string, error)
}

type Scheduler struct {
	cron      *cron.Cron
	schedules []Schedule
	quotes    command.QuoteSource
	store     *subscription.Store
	repo      *storage.Repository
	hosts     []Host
	logger    *logger.Logger
	loc       *time.Location
}

func NewScheduler(
	schedules []Schedule,
	quotes command.QuoteSource,
	store *subscription.Store,
	repo *storage.Repository,
	hosts []Host,
	loc *time.Location,
	log *logger.Logger,
) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(log.Cron()),
			cron.WithChain(cron.Recover(log.Cron()), cron.SkipIfStillRunning(log.Cron())),
		),
		schedules: schedules,
		quotes:    quotes,
		store:     store,
		repo:      repo,
		hosts:     hosts,
		logger:    log,
		loc:       loc,
	}
}

// Run blocks until ctx is cancelled, pushing subscription quotes at every
// scheduled trigger. A push in progress is waited for before returning.
func (s *Scheduler) Run(ctx context.Context) {
	if len(s.schedules) == 0 {
		s.logger.Warn("no push triggers configured, scheduler idle")
		<-ctx.Done()
		return
	}

	for _, sched := range s.schedules {
		trigger := sched.String()
		id := s.cron.Schedule(sched.cron, cron.FuncJob(func() {
			s.runCycle(ctx, trigger)
		}))
		s.logger.Info("push trigger registered", "trigger", trigger, "spec", sched.Spec(),
			"entry", id, "next", sched.Next(time.Now().In(s.loc)).Format(time.DateTime))
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "triggers", len(s.schedules), "timezone", s.loc.String())

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context, trigger string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in push cycle", "trigger", trigger, "panic", fmt.Sprint(r))
		}
	}()
	s.Push(ctx, trigger)
}

// Push sends the subscription quotes of every active group with push
// enabled. Failures are logged per group and never stop the fan-out.
func (s *Scheduler) Push(ctx context.Context, trigger string) {
	if len(s.store.Groups()) == 0 {
		s.logger.Debug("no subscriptions, skipping push", "trigger", trigger)
		return
	}

	runID := uuid.NewString()
	log := s.logger.With("run_id", runID, "trigger", trigger)
	log.Info("push started")

	sent, failed := 0, 0
	for _, host := range s.hosts {
		groups, err := host.ActiveGroups(ctx)
		if err != nil {
			log.Error("list active groups", "error", err)
			continue
		}
		for _, gid := range groups {
			g, ok := s.store.Get(gid, false)
			if !ok || !g.Notify || len(g.List) == 0 {
				continue
			}
			err := s.safePushGroup(ctx, host, gid, g)
			s.record(runID, trigger, gid, len(g.List), err)
			if err != nil {
				failed++
				log.Error("push to group", "group", gid, "error", err)
				continue
			}
			sent++
		}
	}

	log.Info("push completed", "sent", sent, "failed", failed)
}

// safePushGroup turns a panic while pushing to one group into an error so
// the remaining groups are still served.
func (s *Scheduler) safePushGroup(ctx context.Context, host Host, gid string, g subscription.Group) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.pushGroup(ctx, host, gid, g)
}

func (s *Scheduler) pushGroup(ctx context.Context, host Host, gid string, g subscription.Group) error {
	text, err := command.SubscriptionQuotes(ctx, s.quotes, g.List)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}
	if err := host.SendText(ctx, gid, text); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func (s *Scheduler) record(runID, trigger, gid string, securities int, err error) {
	if s.repo == nil {
		return
	}
	entry := &storage.PushLog{
		RunID:      runID,
		GroupID:    gid,
		Trigger:    trigger,
		Securities: securities,
		Status:     storage.PushStatusOK,
	}
	if err != nil {
		entry.Status = storage.PushStatusFailed
		entry.Error = err.Error()
	}
	if dbErr := s.repo.SavePushLog(entry); dbErr != nil {
		s.logger.Error("save push log", "error", dbErr)
	}
}
