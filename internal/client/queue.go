package client

import (
	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/google/uuid"
)

// command is a unit of work executed by the event loop outside idle mode
type command struct {
	id   uuid.UUID
	name string
	// dirty lists the categories to reload once the command ran
	dirty domain.CategorySet
	run   func(Conn) error
	done  chan error
}

func newCommand(name string, dirty domain.CategorySet, run func(Conn) error) *command {
	return &command{
		id:    uuid.New(),
		name:  name,
		dirty: dirty,
		run:   run,
		done:  make(chan error, 1),
	}
}

// commandQueue is a FIFO of pending commands. It is not synchronized; the
// client guards it together with the idle bookkeeping.
type commandQueue struct {
	pending []*command
}

func (q *commandQueue) push(c *command) {
	q.pending = append(q.pending, c)
}

// takeAll removes and returns every pending command in enqueue order
func (q *commandQueue) takeAll() []*command {
	cmds := q.pending
	q.pending = nil
	return cmds
}

func (q *commandQueue) len() int {
	return len(q.pending)
}

// result pairs an executed command with its outcome. Completion is deferred
// until the reloads the command triggered have been published.
type result struct {
	cmd *command
	err error
}

type batch []result

func (b batch) complete() {
	for _, r := range b {
		r.cmd.done <- r.err
	}
}
