package relay

import (
	"time"

	"github.com/sirupsen/logrus"
)

const defaultEnqueueTimeout = 100 * time.Millisecond

type options struct {
	log             logrus.FieldLogger
	peripheralCount int
	policy          BindPolicy
	queueSize       int
	enqueueTimeout  time.Duration
	backlog         int
	discovered      func(slot int, handle uint16)
}

func defaultOptions() options {
	return options{
		log:             logrus.StandardLogger(),
		peripheralCount: defaultPeripheralCount,
		policy:          BindPeerAddress,
		queueSize:       defaultQueueSize,
		enqueueTimeout:  defaultEnqueueTimeout,
		backlog:         defaultBacklog,
	}
}

// An Option configures a Central or a Peripheral.
// Applying an option returns an option that restores the previous value.
// Options that do not apply to a role are ignored by it.
type Option func(*options) Option

func (o *options) apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// Logger sets the logger. The default is the logrus standard logger.
func Logger(l logrus.FieldLogger) Option {
	return func(o *options) Option {
		prev := o.log
		o.log = l
		return Logger(prev)
	}
}

// PeripheralCount sets the number of peripheral slots of a Central.
func PeripheralCount(n int) Option {
	return func(o *options) Option {
		prev := o.peripheralCount
		o.peripheralCount = n
		return PeripheralCount(prev)
	}
}

// Bind sets the slot reservation policy of a Central.
func Bind(p BindPolicy) Option {
	return func(o *options) Option {
		prev := o.policy
		o.policy = p
		return Bind(prev)
	}
}

// QueueSize sets the capacity of the relay queue on a Central, or of the
// delivery queue on a Peripheral.
func QueueSize(n int) Option {
	return func(o *options) Option {
		prev := o.queueSize
		o.queueSize = n
		return QueueSize(prev)
	}
}

// EnqueueTimeout sets how long Central.Enqueue waits for queue space
// before it drops the oldest event.
func EnqueueTimeout(d time.Duration) Option {
	return func(o *options) Option {
		prev := o.enqueueTimeout
		o.enqueueTimeout = d
		return EnqueueTimeout(prev)
	}
}

// Backlog sets how many connection and discovery callbacks the Central's
// mailbox holds before it grows. Callbacks never wait for the worker.
func Backlog(n int) Option {
	return func(o *options) Option {
		prev := o.backlog
		o.backlog = n
		return Backlog(prev)
	}
}

// Discovered sets a function to be called, from the Central's worker,
// when discovery on a slot ends. handle is zero if the output-state
// characteristic was not found. f must not block.
func Discovered(f func(slot int, handle uint16)) Option {
	return func(o *options) Option {
		prev := o.discovered
		o.discovered = f
		return Discovered(prev)
	}
}
