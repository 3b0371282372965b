package orchestrator

import (
	"context"

	"github.com/duetsim/duet/internal/agent"
	"github.com/duetsim/duet/pkg/models"
)

// Status is the run state of a simulation stream.
type Status string

const (
	// StatusIdle means the stream has not produced anything yet.
	StatusIdle Status = "idle"
	// StatusRunning means turns are still being produced.
	StatusRunning Status = "running"
	// StatusCompleted means the run ended normally: turn budget
	// exhausted or a refusal terminal state.
	StatusCompleted Status = "completed"
	// StatusAborted means a turn failed after retries were exhausted.
	StatusAborted Status = "aborted"
)

// Stream is the pull-based turn iterator for one simulation run. Each
// Next call performs at most one completion call and yields at most one
// log entry; the orchestration logic is suspended between calls. The
// iteration pattern follows bufio.Scanner:
//
//	stream := orch.Run(ctx, turns, "")
//	for stream.Next() {
//	    entry := stream.Entry()
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// A Stream is not safe for concurrent use; one caller pulls at a time.
type Stream struct {
	o   *Orchestrator
	ctx context.Context

	numTurns    int
	lastMessage string

	turn int
	half int // 0 = Agent A, 1 = Agent B

	status  Status
	entry   models.LogEntry
	err     error
	refused bool
}

// Next advances the run by one turn. It returns true when a new entry is
// available via Entry, and false when the run has reached a terminal
// state; check Err and Status afterwards. Entries already yielded remain
// valid after an abort.
func (s *Stream) Next() bool {
	if s.status != StatusRunning {
		return false
	}
	if s.refused {
		// The refusing turn was yielded on the previous call; the run
		// ends here and the responder does not get a final turn.
		s.status = StatusCompleted
		s.o.eventf("simulation %s completed", s.o.ExperimentID())
		return false
	}
	if s.turn >= s.numTurns {
		s.status = StatusCompleted
		s.o.eventf("simulation %s completed", s.o.ExperimentID())
		return false
	}

	var speaker, responder *agent.Agent
	var persona string
	if s.half == 0 {
		speaker, responder, persona = s.o.agentA, s.o.agentB, s.o.personaA
	} else {
		speaker, responder, persona = s.o.agentB, s.o.agentA, s.o.personaB
	}

	s.o.eventf("turn %d: %s generating response", s.turn, speaker.Name())

	result, err := speaker.Reply(s.ctx, s.lastMessage)
	if err != nil {
		// Turn failure: an operational event, not a log entry. The run
		// aborts at this point with no partial-round rollback.
		s.err = err
		s.status = StatusAborted
		s.o.eventf("failed turn %d for %s: %v", s.turn, speaker.Name(), err)
		return false
	}

	entry := s.o.newLogEntry(s.turn, speaker, responder, persona, result)
	s.o.logs = append(s.o.logs, entry)
	s.entry = entry
	s.lastMessage = result.Content

	if result.IsRefusal {
		s.o.eventf("%s refused to respond, ending simulation", speaker.Name())
		s.refused = true
	}

	s.half++
	if s.half == 2 {
		s.half = 0
		s.turn++
	}

	return true
}

// Entry returns the log entry produced by the most recent successful
// Next call.
func (s *Stream) Entry() models.LogEntry { return s.entry }

// Err returns the error that aborted the run, or nil for a clean run.
func (s *Stream) Err() error { return s.err }

// Status returns the current run state.
func (s *Stream) Status() Status { return s.status }
