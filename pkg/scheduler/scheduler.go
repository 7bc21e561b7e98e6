package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/ecs-daemonset/pkg/client"
	"github.com/cuemby/ecs-daemonset/pkg/events"
	"github.com/cuemby/ecs-daemonset/pkg/log"
	"github.com/cuemby/ecs-daemonset/pkg/metrics"
	"github.com/cuemby/ecs-daemonset/pkg/reconciler"
	"github.com/cuemby/ecs-daemonset/pkg/types"
)

// Cluster reads cluster state and applies desired count updates.
// *client.Client implements it.
type Cluster interface {
	ListServiceARNs(ctx context.Context, cluster string) ([]string, error)
	ListActiveInstanceARNs(ctx context.Context, cluster string) ([]string, error)
	DescribeService(ctx context.Context, cluster, serviceARN string) (*types.Service, error)
	UpdateDesiredCount(ctx context.Context, cluster, serviceARN string, count int32) error
}

// MarkerChecker reports whether a task definition is daemonset-managed.
// *inspector.Inspector implements it.
type MarkerChecker interface {
	HasDaemonsetMarker(ctx context.Context, taskDefinition string) (bool, error)
}

// Config controls the reconciliation loop
type Config struct {
	Cluster  string
	Interval time.Duration
	// FailFast makes Run return the first cycle error. Otherwise the error
	// is logged and the next cycle runs after the interval.
	FailFast bool
	// DryRun evaluates services without issuing update calls
	DryRun bool
}

// ScaleAction is one desired count change decided in a cycle
type ScaleAction struct {
	ServiceARN string
	From       int32
	To         int32
	Applied    bool // false in dry-run mode
}

// CycleResult summarizes one reconciliation cycle
type CycleResult struct {
	ID          string
	ActiveNodes int32
	Services    int
	Decisions   map[types.Reason]int
	Scaled      []ScaleAction
	Missing     int // services gone between listing and update
	Duration    time.Duration
}

// Scheduler keeps daemonset services scaled to the active node count
type Scheduler struct {
	cluster Cluster
	marker  MarkerChecker
	broker  *events.Broker
	cfg     Config
	logger  zerolog.Logger
}

// NewScheduler creates a new scheduler. broker may be nil.
func NewScheduler(cluster Cluster, marker MarkerChecker, broker *events.Broker, cfg Config) *Scheduler {
	return &Scheduler{
		cluster: cluster,
		marker:  marker,
		broker:  broker,
		cfg:     cfg,
		logger:  log.WithComponent("scheduler").With().Str("cluster", cfg.Cluster).Logger(),
	}
}

// Run executes cycles until ctx is cancelled. Each cycle runs to completion
// before the interval wait starts, so cycles never overlap. Cancellation
// returns nil; with FailFast a cycle error is returned.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Bool("dry_run", s.cfg.DryRun).
		Msg("Scheduler started")
	metrics.RegisterComponent(metrics.ComponentScheduler, true, "running")
	metrics.SetStaleAfter(metrics.ComponentScheduler, 3*s.cfg.Interval+time.Minute)

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			if s.cfg.FailFast {
				metrics.UpdateComponent(metrics.ComponentScheduler, false, err.Error())
				return err
			}
			metrics.UpdateComponent(metrics.ComponentScheduler, true, "retrying after failed cycle")
			s.logger.Error().Err(err).Str("code", client.ErrorCode(err)).Msg("Reconciliation cycle failed, retrying next interval")
		}

		s.logger.Debug().Dur("interval", s.cfg.Interval).Msg("Sleeping")
		timer := time.NewTimer(s.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("Scheduler stopped")
			return nil
		case <-timer.C:
		}
	}

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// RunOnce performs one reconciliation cycle
func (s *Scheduler) RunOnce(ctx context.Context) (*CycleResult, error) {
	timer := metrics.NewTimer()
	result := &CycleResult{
		ID:        uuid.New().String(),
		Decisions: make(map[types.Reason]int),
	}
	logger := s.logger.With().Str("cycle_id", result.ID).Logger()

	err := s.reconcile(ctx, logger, result)
	result.Duration = timer.Duration()
	timer.ObserveDuration(metrics.ReconciliationDuration)

	switch {
	case err == nil:
		metrics.ReconciliationCyclesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		metrics.UpdateComponent(metrics.ComponentECS, true, "")
		metrics.UpdateComponent(metrics.ComponentScheduler, true, "last cycle "+result.ID)
		s.publish(events.EventCycleCompleted, "reconciliation cycle completed", map[string]string{
			"cycle_id":     result.ID,
			"active_nodes": strconv.Itoa(int(result.ActiveNodes)),
			"services":     strconv.Itoa(result.Services),
			"scaled":       strconv.Itoa(len(result.Scaled)),
		})
		logger.Info().
			Int32("active_nodes", result.ActiveNodes).
			Int("services", result.Services).
			Int("scaled", len(result.Scaled)).
			Dur("duration", result.Duration).
			Msg("Reconciliation cycle completed")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		metrics.ReconciliationCyclesTotal.WithLabelValues(metrics.ResultCanceled).Inc()
	default:
		metrics.ReconciliationCyclesTotal.WithLabelValues(metrics.ResultError).Inc()
		metrics.UpdateComponent(metrics.ComponentECS, false, err.Error())
		s.publish(events.EventCycleFailed, err.Error(), map[string]string{"cycle_id": result.ID})
	}

	return result, err
}

// reconcile lists the full cluster state, then evaluates services in
// listing order.
func (s *Scheduler) reconcile(ctx context.Context, logger zerolog.Logger, result *CycleResult) error {
	serviceARNs, err := s.cluster.ListServiceARNs(ctx, s.cfg.Cluster)
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	instanceARNs, err := s.cluster.ListActiveInstanceARNs(ctx, s.cfg.Cluster)
	if err != nil {
		return fmt.Errorf("failed to list active container instances: %w", err)
	}

	result.Services = len(serviceARNs)
	result.ActiveNodes = int32(len(instanceARNs))
	metrics.ServicesTotal.WithLabelValues(s.cfg.Cluster).Set(float64(result.Services))
	metrics.ActiveNodes.WithLabelValues(s.cfg.Cluster).Set(float64(result.ActiveNodes))

	logger.Debug().
		Int("services", result.Services).
		Int32("active_nodes", result.ActiveNodes).
		Msg("Cluster state collected")

	for _, arn := range serviceARNs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.reconcileService(ctx, logger, arn, result); err != nil {
			s.publish(events.EventServiceFailed, err.Error(), map[string]string{
				"cycle_id": result.ID,
				"service":  arn,
			})
			return fmt.Errorf("service %s: %w", arn, err)
		}
	}

	return nil
}

// reconcileService evaluates a single service and issues at most one update
func (s *Scheduler) reconcileService(ctx context.Context, logger zerolog.Logger, arn string, result *CycleResult) error {
	logger = logger.With().Str("service", arn).Logger()
	logger.Debug().Msg("Evaluating service")

	svc, err := s.cluster.DescribeService(ctx, s.cfg.Cluster, arn)
	if err != nil {
		if client.IsNotFound(err) {
			logger.Warn().Err(err).Msg("Service disappeared before evaluation, skipping")
			result.Missing++
			return nil
		}
		return err
	}

	decision, err := reconciler.Decide(svc.DesiredCount, svc.ConstraintTypes(), result.ActiveNodes, func() (bool, error) {
		return s.marker.HasDaemonsetMarker(ctx, svc.TaskDefinition)
	})
	if err != nil {
		return fmt.Errorf("failed to inspect task definition %s: %w", svc.TaskDefinition, err)
	}

	result.Decisions[decision.Reason]++
	metrics.DecisionsTotal.WithLabelValues(string(decision.Action), string(decision.Reason)).Inc()

	if !decision.IsScale() {
		logger.Debug().
			Str("reason", string(decision.Reason)).
			Int32("desired", svc.DesiredCount).
			Msg("Skipping service")
		return nil
	}

	logger.Info().
		Str("task_definition", svc.TaskDefinition).
		Int32("desired", svc.DesiredCount).
		Int32("target", decision.Target).
		Bool("dry_run", s.cfg.DryRun).
		Msg("Daemonset service out of sync")

	action := ScaleAction{ServiceARN: arn, From: svc.DesiredCount, To: decision.Target}
	if s.cfg.DryRun {
		result.Scaled = append(result.Scaled, action)
		return nil
	}

	if err := s.cluster.UpdateDesiredCount(ctx, s.cfg.Cluster, arn, decision.Target); err != nil {
		if client.IsNotFound(err) {
			logger.Warn().Err(err).Msg("Service no longer active, skipping update")
			result.Missing++
			return nil
		}
		return err
	}

	action.Applied = true
	result.Scaled = append(result.Scaled, action)
	metrics.ServicesScaled.Inc()
	s.publish(events.EventServiceScaled, "desired count updated", map[string]string{
		"cycle_id": result.ID,
		"service":  arn,
		"from":     strconv.Itoa(int(action.From)),
		"to":       strconv.Itoa(int(action.To)),
	})
	return nil
}

func (s *Scheduler) publish(t events.EventType, msg string, metadata map[string]string) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(events.NewEvent(t, msg, metadata))
}
