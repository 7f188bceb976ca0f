package client

import (
	"errors"

	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/genricoloni/mpdbar/internal/wire"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// errUnclearable marks a server error that clearerror could not reset
var errUnclearable = errors.New("server error could not be cleared")

// subsystems is the idle subscription mask
var subsystems = func() []string {
	names := make([]string, 0, len(domain.AllCategories))
	for _, c := range domain.AllCategories {
		names = append(names, c.Subsystem())
	}
	return names
}()

// run owns conn until it returns. Each iteration drains the command queue,
// then waits in idle for server changes or a cancel, then reloads whatever
// changed.
func (c *Client) run(conn Session, done chan struct{}) {
	defer close(done)

	var cause error
	for {
		executed, dirty, err := c.drain(conn)
		if err != nil {
			executed.complete()
			cause = err
			break
		}

		// Executed commands complete only after their reloads, so the
		// idle that follows a drain must not block.
		flush := len(executed) > 0
		changed, stop, err := c.wait(conn, flush)
		if err == nil && !stop {
			err = c.dispatch(conn, changed, dirty)
		}
		executed.complete()
		if err != nil {
			cause = err
			break
		}
		if stop {
			break
		}
	}

	c.teardown(conn, cause)
}

// drain runs every queued command in order. A connection failure aborts the
// drain; commands not yet run are failed by teardown.
func (c *Client) drain(conn Session) (batch, domain.CategorySet, error) {
	var (
		executed batch
		dirty    domain.CategorySet
	)
	for {
		c.mu.Lock()
		cmds := c.queue.takeAll()
		c.mu.Unlock()
		if len(cmds) == 0 {
			return executed, dirty, nil
		}

		for i, cmd := range cmds {
			err := c.execute(conn, cmd)
			executed = append(executed, result{cmd: cmd, err: err})
			if err == nil {
				dirty.Union(cmd.dirty)
				continue
			}
			if wire.IsConnectionError(err) {
				for _, rest := range cmds[i+1:] {
					executed = append(executed, result{cmd: rest, err: ErrDisconnected})
				}
				return executed, dirty, err
			}
		}
	}
}

// execute runs one command, recovering once from a server error
func (c *Client) execute(conn Conn, cmd *command) error {
	c.logger.Debug("Executing command", zap.String("cmd", cmd.name), zap.Stringer("id", cmd.id))

	err := cmd.run(conn)
	var serr *wire.ServerError
	if errors.As(err, &serr) {
		c.logger.Warn("Server rejected command, clearing error and retrying",
			zap.String("cmd", cmd.name),
			zap.Stringer("id", cmd.id),
			zap.Error(err))
		if cerr := conn.ClearError(); cerr != nil {
			return &wire.ConnectionError{Op: "clearerror", Err: errors.Join(errUnclearable, cerr)}
		}
		err = cmd.run(conn)
	}

	if err != nil {
		c.logger.Warn("Command failed", zap.String("cmd", cmd.name), zap.Stringer("id", cmd.id), zap.Error(err))
	} else {
		c.logger.Debug("Command completed", zap.String("cmd", cmd.name), zap.Stringer("id", cmd.id))
	}
	return err
}

// wait enters idle and blocks until the server reports changes or the idle
// is cancelled. With flush set the idle is cancelled right away, which
// collects change flags raised by the commands just drained. stop reports a
// requested shutdown.
func (c *Client) wait(conn Session, flush bool) (changed []string, stop bool, err error) {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return nil, true, nil
	}
	if !flush && c.queue.len() > 0 {
		c.mu.Unlock()
		return nil, false, nil
	}
	if err := conn.Idle(subsystems...); err != nil {
		c.mu.Unlock()
		return nil, false, err
	}
	c.idling = true
	if flush {
		c.interruptLocked()
	}
	c.mu.Unlock()

	changed, err = conn.ReadIdle()

	c.mu.Lock()
	cancelled := c.cancelSent
	stop = c.stopping
	c.idling, c.cancelSent = false, false
	c.mu.Unlock()

	switch {
	case stop:
		return nil, true, nil
	case err != nil:
		return nil, false, err
	case len(changed) == 0 && !cancelled:
		return nil, false, ErrDeadConnection
	}
	return changed, false, nil
}

// dispatch runs one reload per category: reported categories first, in the
// order received, then categories dirtied by drained commands.
func (c *Client) dispatch(conn Conn, changed []string, dirty domain.CategorySet) error {
	var (
		seen  domain.CategorySet
		order []domain.Category
	)
	for _, name := range changed {
		cat, ok := domain.CategoryFromSubsystem(name)
		if !ok || seen.Has(cat) {
			continue
		}
		seen.Add(cat)
		order = append(order, cat)
	}
	for _, cat := range dirty.Categories() {
		if !seen.Has(cat) {
			seen.Add(cat)
			order = append(order, cat)
		}
	}

	for _, cat := range order {
		if err := c.state.Reload(conn, cat); err != nil {
			if wire.IsConnectionError(err) {
				return err
			}
			c.logger.Warn("Reload failed", zap.Stringer("category", cat), zap.Error(err))
		}
	}
	return nil
}

// teardown releases conn and notifies observers. Pending commands fail with
// ErrDisconnected. Errors caused by a requested shutdown are not recorded.
func (c *Client) teardown(conn Session, cause error) {
	c.state.Reset()

	c.mu.Lock()
	if c.stopping {
		cause = nil
	}
	pending := c.queue.takeAll()
	c.conn = nil
	c.status = stateDisconnected
	c.stopping = false
	c.idling, c.cancelSent = false, false
	c.lastErr = cause
	c.mu.Unlock()

	for _, cmd := range pending {
		cmd.done <- ErrDisconnected
	}

	err := multierr.Append(cause, conn.Close())
	if cause != nil {
		c.logger.Warn("Connection lost", zap.Error(err))
	} else {
		c.logger.Info("Disconnected from music server")
	}

	c.events.Publish(domain.EventDisconnected)
}
