package client

import (
	"time"

	"go.uber.org/zap"
)

const (
	DefaultHost        = "localhost"
	DefaultPort        = 5190
	DefaultDialTimeout = 5 * time.Second
	DefaultIOTimeout   = 5 * time.Second
)

type Options struct {
	// Host of the message link server
	Host string

	// Port of the message link server
	Port int

	// DialTimeout bounds connection establishment
	DialTimeout time.Duration

	// IOTimeout bounds writing the command and reading each reply line
	IOTimeout time.Duration

	// Now stamps outgoing messages. Defaults to time.Now
	Now func() time.Time

	Log *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Host == "" {
		o.Host = DefaultHost
	}

	if o.Port <= 0 {
		o.Port = DefaultPort
	}

	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}

	if o.IOTimeout <= 0 {
		o.IOTimeout = DefaultIOTimeout
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	if o.Log == nil {
		o.Log = zap.NewNop()
	}

	return o
}
