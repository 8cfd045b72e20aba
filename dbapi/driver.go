package dbapi

import (
	"context"

	"github.com/google/uuid"
)

// Connector wraps the connect call of a DB API v2 style driver. On
// success the raw connection is wrapped in a *Conn proxy that carries
// the instrumentation forward to cursors and transactions.
type Connector struct {
	connect ConnectFunc
	cfg     *config
}

// NewConnector wraps a driver's raw connect call.
//
// Example:
//
//	connector := dbapi.NewConnector(mysqlConnect,
//	    dbapi.WithModuleName("mysql"),
//	)
//	conn, err := connector.Connect(ctx, nil)
func NewConnector(connect ConnectFunc, opts ...Option) *Connector {
	return &Connector{
		connect: connect,
		cfg:     newConfig(opts...),
	}
}

// Connect invokes the raw connect call inside a "<module>:<connectName>"
// span and returns the wrapped connection. params may be nil.
//
// Credential-bearing keyword keys (password, passwd, plus any configured
// with WithRedactedKeys) are stripped from the recorded connect
// arguments; the raw connect call receives the originals untouched.
//
// Any error from the raw connect propagates unchanged after the span is
// closed with error status. No retry, no suppression.
func (f *Connector) Connect(ctx context.Context, params *Params) (*Conn, error) {
	var connectParams *Params
	if !params.Empty() {
		connectParams = params.redacted(f.cfg.redactedKeys)
	}

	id := uuid.NewString()

	spanCtx, done := funcSpan(ctx, f.cfg, f.cfg.ModuleName+":"+f.cfg.ConnectName, id)
	raw, err := f.connect(spanCtx, params)
	done(err)
	if err != nil {
		return nil, err
	}

	return newConn(raw, f.cfg, connectParams, id), nil
}
