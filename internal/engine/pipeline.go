package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const laneBuffer = 64

// Pipeline runs the five decision stages for one message:
// RateLimiter -> ContextAssembler -> EnthusiasmScorer -> ResponseGate ->
// set-busy. Generation and delivery belong to the caller.
//
// Messages are processed in arrival order within a channel (one serialized
// lane per channel) with full parallelism across channels. The only
// suspension points are the two external calls, both timeout-bounded.
type Pipeline struct {
	Limiter   *RateLimiter
	Assembler *ContextAssembler
	Scorer    *Scorer
	Status    *StatusCoordinator
	Gate      *ResponseGate

	mu    sync.Mutex
	lanes map[string]chan laneJob
	ctx   context.Context
	wg    sync.WaitGroup
}

type laneJob struct {
	msg     Message
	history func() []Message
	done    func(Outcome)
}

// NewPipeline wires the five components. ctx bounds the lifetime of all
// channel lanes; cancelling it discards in-flight work with no compensation
// needed, because the only prior state mutation (the admission timestamp) is
// already durable on its own.
func NewPipeline(ctx context.Context, limiter *RateLimiter, assembler *ContextAssembler, scorer *Scorer, status *StatusCoordinator, gate *ResponseGate) *Pipeline {
	return &Pipeline{
		Limiter:   limiter,
		Assembler: assembler,
		Scorer:    scorer,
		Status:    status,
		Gate:      gate,
		lanes:     make(map[string]chan laneJob),
		ctx:       ctx,
	}
}

// Submit enqueues a message onto its channel's lane. Intra-channel order is
// submit order, so callers must submit from a single goroutine per channel
// (the gateway reader). history is fetched lazily on the lane goroutine,
// keeping Submit free of I/O; done also runs on the lane goroutine.
func (p *Pipeline) Submit(msg Message, history func() []Message, done func(Outcome)) {
	lane := p.lane(msg.ChannelID)
	select {
	case lane <- laneJob{msg: msg, history: history, done: done}:
	case <-p.ctx.Done():
	}
}

// Process runs the full decision pass for one message, synchronously.
// Used by the lane workers and directly by the diagnostic probe.
func (p *Pipeline) Process(ctx context.Context, msg Message, history []Message) Outcome {
	out := Outcome{TraceID: uuid.NewString()}
	now := time.Now()

	// Stage 1: admission. Zero-cost; a refusal spends nothing downstream.
	if !p.Limiter.Admit(msg.ChannelID, now) {
		out.Decision = ResponseDecision{Threshold: p.Gate.Threshold()}
		p.signalThrottled(msg.ChannelID, now)
		log.Info().
			Str("trace", out.TraceID).
			Str("channel", msg.ChannelID).
			Msg("message rejected by rate limiter")
		return out
	}
	out.Admitted = true

	// Stage 2: snapshot + deterministic triggers.
	out.Snapshot, out.Triggers = p.Assembler.Assemble(msg, history)

	// Zero-waste rule: no external call for an untriggered message.
	if out.Triggers.Empty() {
		out.Decision = ResponseDecision{Threshold: p.Gate.Threshold()}
		return out
	}

	// Stage 3: the single external enthusiasm evaluation.
	peerSummary := p.Status.Summary(ctx, out.Snapshot.PeerIDs())
	res := p.Scorer.Score(ctx, out.Snapshot, msg, out.Triggers, peerSummary)
	out.Result = &res

	// Stage 4: verdict.
	out.Decision = p.Gate.Decide(msg.ChannelID, out.Triggers, res, time.Now())

	// Stage 5: visible busy signal while the caller generates.
	if out.Decision.Respond {
		p.Status.SetSelfPresence(StatusDND, "replying")
	}

	p.logDecision(out, msg)
	return out
}

// Probe runs stages 2-4 for a supplied message without consuming an
// admission slot, without touching presence and without generation. The
// diagnostic command surface uses it to inspect what the pipeline would do.
func (p *Pipeline) Probe(ctx context.Context, msg Message, history []Message) Outcome {
	out := Outcome{TraceID: uuid.NewString(), Admitted: true}
	out.Snapshot, out.Triggers = p.Assembler.Assemble(msg, history)
	if out.Triggers.Empty() {
		out.Decision = ResponseDecision{Threshold: p.Gate.Threshold()}
		return out
	}
	peerSummary := p.Status.Summary(ctx, out.Snapshot.PeerIDs())
	res := p.Scorer.Score(ctx, out.Snapshot, msg, out.Triggers, peerSummary)
	out.Result = &res
	out.Decision = p.Gate.Decide(msg.ChannelID, out.Triggers, res, time.Now())
	return out
}

// signalThrottled flips own presence to dnd with the window expiry as a
// human-readable note.
func (p *Pipeline) signalThrottled(channelID string, now time.Time) {
	note := "cooldown"
	if until := p.Limiter.BlockedUntil(channelID, now); !until.IsZero() {
		note = "cooldown until " + until.UTC().Format("15:04:05")
	}
	p.Status.SetSelfPresence(StatusDND, note)
}

func (p *Pipeline) logDecision(out Outcome, msg Message) {
	ev := log.Info().
		Str("trace", out.TraceID).
		Str("channel", msg.ChannelID).
		Str("author", msg.Author).
		Str("winning_trigger", string(out.Decision.WinningTrigger)).
		Int("score", out.Decision.Score).
		Int("threshold", out.Decision.Threshold).
		Bool("respond", out.Decision.Respond).
		Bool("cooldown_blocked", out.Decision.CooldownBlocked)
	if out.Result != nil {
		ev = ev.Bool("fallback", out.Result.Fallback).Str("reasoning", out.Result.Reasoning)
	}
	ev.Msg("decision")
}

func (p *Pipeline) lane(channelID string) chan laneJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	if lane, ok := p.lanes[channelID]; ok {
		return lane
	}
	lane := make(chan laneJob, laneBuffer)
	p.lanes[channelID] = lane
	p.wg.Add(1)
	go p.runLane(lane)
	return lane
}

func (p *Pipeline) runLane(lane chan laneJob) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-lane:
			var history []Message
			if job.history != nil {
				history = job.history()
			}
			out := p.Process(p.ctx, job.msg, history)
			if job.done != nil {
				job.done(out)
			}
		}
	}
}

// Wait blocks until all lane workers exited after ctx cancellation.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
