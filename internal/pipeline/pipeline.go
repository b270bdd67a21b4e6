package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/aldersync/voice-core/internal/audit"
	"github.com/aldersync/voice-core/internal/controller"
	"github.com/aldersync/voice-core/internal/entity"
	"github.com/aldersync/voice-core/internal/infrastructure/logging"
	"github.com/aldersync/voice-core/internal/infrastructure/mqtt"
	"github.com/aldersync/voice-core/internal/intent"
	"github.com/aldersync/voice-core/internal/session"
	"github.com/aldersync/voice-core/internal/validation"
)

// Dispatcher issues the single outbound actuation for a resolved command.
type Dispatcher interface {
	Dispatch(ctx context.Context, resolved entity.ResolvedEntities) controller.DispatchResult
}

// Governor gates commands on session quota and expiry.
type Governor interface {
	Admit(ctx context.Context, sessionID string) (session.Session, error)
}

// EventPublisher fans command events out to the MQTT broker.
type EventPublisher interface {
	PublishJSON(topic string, v any) error
}

// Broadcaster pushes command events to connected WebSocket clients.
type Broadcaster interface {
	Broadcast(v any)
}

// MetricsWriter records per-command telemetry.
type MetricsWriter interface {
	WriteCommandMetric(intent, outcome, stage string, latency time.Duration)
}

// Deps bundles the pipeline's collaborators. Classifier, Resolver,
// Governor, Dispatcher, Audit, and Logger are required; the event and
// telemetry sinks are optional and strictly best-effort.
type Deps struct {
	Classifier *intent.Classifier
	Resolver   *entity.Resolver
	Governor   Governor
	Dispatcher Dispatcher
	Audit      audit.Repository
	Logger     *logging.Logger

	Events  EventPublisher
	Live    Broadcaster
	Metrics MetricsWriter
}

// Pipeline sequences validation, classification, resolution, session
// admission, and dispatch for one command, short-circuiting on the
// first failing stage. Pipelines are stateless; one instance serves all
// commands concurrently.
type Pipeline struct {
	deps Deps
}

// New creates a pipeline from its collaborators.
func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// commandEvent is the payload published to MQTT and WebSocket consumers.
type commandEvent struct {
	SessionID string    `json:"session_id"`
	Intent    string    `json:"intent"`
	EntityID  string    `json:"entity_id,omitempty"`
	Stage     string    `json:"stage"`
	Outcome   string    `json:"outcome"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Process runs one command through the pipeline.
//
// Every run, successful or not, produces exactly one audit event
// carrying the furthest stage reached. No error escapes: failures are
// folded into the Result, and a bad command never aborts the service.
//
// The session gate runs strictly before dispatch, so no controller call
// is ever issued for a throttled or expired session.
//
// Parameters:
//   - ctx: Context bounding the session store and controller calls
//   - rawText: Command text exactly as received
//   - sessionID: Opaque session identifier (already assigned by the API layer)
//
// Returns:
//   - Result: Terminal outcome; inspect Err and Outcome for failures
func (p *Pipeline) Process(ctx context.Context, rawText, sessionID string) Result {
	started := time.Now()
	result := Result{SessionID: sessionID}

	defer func() {
		p.settle(ctx, &result, time.Since(started))
	}()

	// Validate. The raw text is not echoed into the result on failure.
	validated, err := validation.Validate(rawText)
	if err != nil {
		result.Stage = audit.StageValidate
		result.Outcome = OutcomeInvalidInput
		result.Err = err
		return result
	}
	result.Command = validated.Original

	// Classify. An unmatched command is a terminal, non-error outcome.
	parsed := p.deps.Classifier.Classify(validated.Normalised)
	result.Stage = audit.StageClassify
	result.Intent = parsed.Intent
	if parsed.IsUnknown() {
		result.Outcome = OutcomeUnknownCommand
		return result
	}

	// Resolve to a concrete entity.
	resolved, err := p.deps.Resolver.Resolve(parsed)
	if err != nil {
		result.Stage = audit.StageResolve
		result.Outcome = resolutionOutcome(err)
		result.Err = err
		return result
	}
	result.Stage = audit.StageResolve
	result.EntityID = resolved.EntityID
	result.Parameters = mergeParams(resolved)

	// Session gate.
	if _, err := p.deps.Governor.Admit(ctx, sessionID); err != nil {
		result.Stage = audit.StageAdmit
		result.Outcome = admissionOutcome(err)
		result.Err = err
		return result
	}
	result.Stage = audit.StageAdmit

	// Dispatch: exactly one actuation attempt.
	dispatch := p.deps.Dispatcher.Dispatch(ctx, resolved)
	result.Stage = audit.StageDispatch
	result.Dispatch = &dispatch
	if dispatch.Success {
		result.Outcome = OutcomeSuccess
	} else {
		result.Outcome = string(dispatch.ErrorKind)
	}

	return result
}

// settle writes the single audit event for the run and fans the outcome
// out to the best-effort sinks.
func (p *Pipeline) settle(ctx context.Context, result *Result, latency time.Duration) {
	event := &audit.Event{
		SessionID: result.SessionID,
		Intent:    string(result.Intent),
		EntityID:  result.EntityID,
		Stage:     result.Stage,
		Outcome:   result.Outcome,
	}
	if result.Err != nil {
		event.Details = result.Err.Error()
	} else if result.Dispatch != nil {
		event.Details = result.Dispatch.Message
	}

	if err := p.deps.Audit.Create(ctx, event); err != nil {
		p.deps.Logger.Error("audit write failed",
			"session_id", result.SessionID,
			"outcome", result.Outcome,
			"error", err,
		)
	}

	p.deps.Logger.Info("command processed",
		"session_id", result.SessionID,
		"intent", string(result.Intent),
		"entity_id", result.EntityID,
		"stage", string(result.Stage),
		"outcome", result.Outcome,
		"latency_ms", latency.Milliseconds(),
	)

	ev := commandEvent{
		SessionID: result.SessionID,
		Intent:    string(result.Intent),
		EntityID:  result.EntityID,
		Stage:     string(result.Stage),
		Outcome:   result.Outcome,
		Timestamp: time.Now().UTC(),
	}
	if result.Dispatch != nil {
		ev.Message = result.Dispatch.Message
	}

	if p.deps.Events != nil {
		if err := p.deps.Events.PublishJSON(mqtt.Topics{}.CommandResult(result.Outcome), ev); err != nil {
			p.deps.Logger.Warn("event publish failed", "error", err)
		}
	}
	if p.deps.Live != nil {
		p.deps.Live.Broadcast(ev)
	}
	if p.deps.Metrics != nil {
		p.deps.Metrics.WriteCommandMetric(string(result.Intent), result.Outcome, string(result.Stage), latency)
	}
}

// mergeParams flattens resolved parameters for the API response.
func mergeParams(resolved entity.ResolvedEntities) map[string]any {
	if len(resolved.NumericParams) == 0 && len(resolved.TextParams) == 0 {
		return nil
	}
	params := make(map[string]any, len(resolved.NumericParams)+len(resolved.TextParams))
	for k, v := range resolved.NumericParams {
		params[k] = v
	}
	for k, v := range resolved.TextParams {
		params[k] = v
	}
	return params
}

func resolutionOutcome(err error) string {
	switch {
	case errors.Is(err, entity.ErrDomainNotPermitted):
		return OutcomeDomainNotPermitted
	case errors.Is(err, entity.ErrOutOfRange):
		return OutcomeOutOfRange
	default:
		return OutcomeUnknownEntity
	}
}

func admissionOutcome(err error) string {
	if errors.Is(err, session.ErrQuotaExceeded) {
		return OutcomeQuotaExceeded
	}
	return OutcomeSessionExpired
}
