package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"aegminer/internal/daemon"
	"aegminer/internal/ledger"
	"aegminer/internal/logging"
	"aegminer/internal/logs"
	"aegminer/internal/miner"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. shutdown is
// invoked when a client requests daemon termination; it may be nil.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, shutdown func(), logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, shutdown: shutdown, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Aegminer", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.Args(logging.String("socket", s.path))...)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Args(logging.Error(err))...)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.Args(logging.String("socket", s.path), logging.Error(err))...)
	}
}

type service struct {
	daemon   *daemon.Daemon
	shutdown func()
	logger   *slog.Logger
	ctx      context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = os.Getpid()
	resp.MiningState = status.MiningState
	resp.SessionID = status.SessionID
	resp.WalletAddress = status.WalletAddress
	resp.BlocksMined = status.BlocksMined
	resp.Balance = status.Balance
	resp.Info = status.Info
	resp.LastError = status.LastError
	resp.LastErrorRetriable = status.LastErrorRetriable
	resp.LedgerDBPath = status.LedgerDBPath
	resp.LockPath = status.LockFilePath
	return nil
}

func (s *service) StartMining(_ StartMiningRequest, resp *StartMiningResponse) error {
	s.log().Debug("mining start requested")
	sessionID, err := s.daemon.StartMining(s.ctx)
	if err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.SessionID = sessionID
	resp.Message = "mining started"
	s.log().Info("mining started via IPC", logging.Args(logging.String("session_id", sessionID))...)
	return nil
}

func (s *service) StopMining(_ StopMiningRequest, resp *StopMiningResponse) error {
	s.log().Debug("mining stop requested")
	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()
	if err := s.daemon.StopMining(ctx); err != nil {
		if errors.Is(err, miner.ErrNotRunning) {
			resp.Stopped = false
			resp.Message = "mining not running"
			return nil
		}
		return err
	}
	resp.Stopped = true
	resp.Message = "mining stopped"
	s.log().Info("mining stopped via IPC")
	return nil
}

func (s *service) Shutdown(_ ShutdownRequest, resp *ShutdownResponse) error {
	s.log().Info("daemon shutdown requested via IPC")
	resp.Stopping = true
	if s.shutdown != nil {
		// Let the response flush before the listener goes away.
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdown()
		}()
	}
	return nil
}

func (s *service) Events(req EventsRequest, resp *EventsResponse) error {
	ctx := s.ctx
	wait := req.WaitMillis > 0
	if wait {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, time.Duration(req.WaitMillis)*time.Millisecond)
		defer cancel()
	}
	events, next, err := s.daemon.Events(ctx, req.Since, req.Limit, wait)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	resp.Events = events
	resp.Next = next
	return nil
}

func (s *service) Balance(_ BalanceRequest, resp *BalanceResponse) error {
	balance, err := s.daemon.Balance(s.ctx)
	if err != nil {
		return err
	}
	resp.Balance = balance
	return nil
}

func (s *service) MiningInfo(_ MiningInfoRequest, resp *MiningInfoResponse) error {
	info, err := s.daemon.MiningInfo(s.ctx)
	if err != nil {
		return err
	}
	resp.Info = info
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	sessions, err := s.daemon.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Sessions = make([]SessionSummary, 0, len(sessions))
	for _, record := range sessions {
		resp.Sessions = append(resp.Sessions, sessionSummary(record))
	}
	return nil
}

func (s *service) SessionBlocks(req SessionBlocksRequest, resp *SessionBlocksResponse) error {
	if req.SessionID == "" {
		return errors.New("session id is required")
	}
	blocks, err := s.daemon.SessionBlocks(s.ctx, req.SessionID)
	if err != nil {
		return err
	}
	resp.Blocks = make([]BlockSummary, 0, len(blocks))
	for _, block := range blocks {
		resp.Blocks = append(resp.Blocks, BlockSummary{
			SessionID: block.SessionID,
			Seq:       block.Seq,
			BlockHash: block.BlockHash,
			MinedAt:   block.MinedAt,
		})
	}
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}

func sessionSummary(record ledger.SessionRecord) SessionSummary {
	return SessionSummary{
		ID:            record.ID,
		WalletAddress: record.WalletAddress,
		StartedAt:     record.StartedAt,
		StoppedAt:     record.StoppedAt,
		BlocksMined:   record.BlocksMined,
		FatalError:    record.FatalError,
		Running:       record.Running(),
	}
}
