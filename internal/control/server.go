// Package control exposes the running daemon over a local JSON-RPC 2.0
// endpoint (unix socket, or named pipe on Windows) so the earthwall CLI
// can trigger refreshes and inspect status without a second daemon.
package control

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/earthwall/earthwall/internal/history"
	"github.com/earthwall/earthwall/internal/refresh"
	"github.com/earthwall/earthwall/pkg/logger"
)

// JSON-RPC error codes for refresh operations.
const (
	codeAlreadyRefreshing = jrpc2.Code(-32001)
	codeNoToken           = jrpc2.Code(-32002)
)

// Server serves the control endpoint. One jrpc2 server is run per
// accepted connection; the scheduler serializes actual work.
type Server struct {
	sched   *refresh.Scheduler
	hist    *history.Store
	version string
	log     logger.Logger

	mu  sync.Mutex
	lis net.Listener
}

// NewServer builds a control server around the scheduler and the cycle
// history store. hist may be nil; earth.history then returns empty.
func NewServer(sched *refresh.Scheduler, hist *history.Store, version string, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Server{sched: sched, hist: hist, version: version, log: log}
}

// Listen binds the platform control endpoint.
func (s *Server) Listen() error {
	lis, err := createListener()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()
	s.log.Info("control endpoint listening on %s", lis.Addr())
	return nil
}

// Serve accepts connections until ctx is cancelled or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	lis := s.lis
	s.mu.Unlock()
	if lis == nil {
		return errors.New("control server not listening")
	}

	methods := handler.Map{
		MethodRefresh: handler.New(s.refresh),
		MethodStatus:  handler.New(s.status),
		MethodHistory: handler.New(s.historyMethod),
		MethodVersion: handler.New(s.versionMethod),
	}

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go func() {
			srv := jrpc2.NewServer(methods, nil)
			srv.Start(channel.Line(conn, conn))
			srv.Wait()
			conn.Close()
		}()
	}
}

// Close stops the listener. In-flight requests finish on their own
// connections.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		_ = s.lis.Close()
		s.lis = nil
	}
}

func (s *Server) refresh(_ context.Context) (*RefreshResult, error) {
	err := s.sched.TriggerManual()
	switch {
	case errors.Is(err, refresh.ErrAlreadyRefreshing):
		return nil, &jrpc2.Error{Code: codeAlreadyRefreshing, Message: err.Error()}
	case errors.Is(err, refresh.ErrNoToken):
		return nil, &jrpc2.Error{Code: codeNoToken, Message: err.Error()}
	case err != nil:
		return nil, err
	}
	return &RefreshResult{Started: true, Message: "refresh started"}, nil
}

func (s *Server) status(_ context.Context) (*StatusResult, error) {
	res := &StatusResult{
		State:       s.sched.State().String(),
		LastMessage: s.sched.LastMessage(),
	}
	if t := s.sched.LastSuccess(); !t.IsZero() {
		res.LastSuccess = &t
	}
	if t := s.sched.NextFire(); !t.IsZero() {
		res.NextFire = &t
	}
	return res, nil
}

func (s *Server) historyMethod(_ context.Context, p *HistoryParams) (*HistoryResult, error) {
	res := &HistoryResult{Cycles: []CycleEntry{}}
	if s.hist == nil {
		return res, nil
	}
	limit := 20
	if p != nil && p.Limit > 0 {
		limit = p.Limit
	}
	cycles, err := s.hist.Recent(limit)
	if err != nil {
		return nil, err
	}
	for _, c := range cycles {
		res.Cycles = append(res.Cycles, CycleEntry{
			StartedAt: c.StartedAt,
			Outcome:   c.Outcome,
			Message:   c.Message,
		})
	}
	return res, nil
}

func (s *Server) versionMethod(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: s.version}, nil
}
