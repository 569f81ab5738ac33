package channel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/warden/internal/domain"
	"github.com/bft-labs/warden/pkg/log"
)

// DefaultIOTimeout bounds how long a single connection may take to send
// its request line and receive the response.
const DefaultIOTimeout = 5 * time.Second

// maxLineBytes caps the request line, newline included. Longer requests
// are answered with errLineTooLong and never reach the handler.
const maxLineBytes = 4096

// maxDrainBytes bounds how much of an oversized request is discarded before
// the error reply is written.
const maxDrainBytes = 64 << 10

var errLineTooLong = errors.New("request line too long")

// Handler answers one request line. A returned error is reported to the
// client and logged; it never stops the server.
type Handler func(ctx context.Context, line string) (string, error)

// Server is the bound, server side of the channel.
type Server struct {
	path      string
	listener  net.Listener
	logger    log.Logger
	ioTimeout time.Duration
}

// Listen binds the socket at path, replacing a stale socket file.
func Listen(path string, logger log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create socket dir: %v", domain.ErrChannelUnavailable, err)
	}
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("%w: remove existing socket: %v", domain.ErrChannelUnavailable, err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on socket: %v", domain.ErrChannelUnavailable, err)
	}

	return &Server{
		path:      path,
		listener:  listener,
		logger:    logger.With(log.String("component", "listener")),
		ioTimeout: DefaultIOTimeout,
	}, nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve accepts connections one at a time and services each fully before
// the next accept. It returns nil once ctx is done or the server is closed.
func (s *Server) Serve(ctx context.Context, handle Handler) error {
	s.logger.Debug("command loop started", log.String("socket", s.path))
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("accept failed", log.Err(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		s.serveConn(ctx, conn, handle)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn, handle Handler) {
	defer conn.Close()

	logger := s.logger.With(log.String("request_id", uuid.NewString()))
	if err := conn.SetDeadline(time.Now().Add(s.ioTimeout)); err != nil {
		logger.Warn("set deadline failed", log.Err(err))
		return
	}

	reader := bufio.NewReaderSize(conn, maxLineBytes)
	raw, err := reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		logger.Warn("rejecting request", log.Int("max_bytes", maxLineBytes), log.Err(errLineTooLong))
		// Unread input would turn the client's read into a reset.
		_, _ = io.Copy(io.Discard, io.LimitReader(reader, maxDrainBytes))
		if _, err := io.WriteString(conn, "error: "+errLineTooLong.Error()+"\n"); err != nil {
			logger.Warn("write response failed", log.Err(err))
		}
		return
	}
	if err != nil && len(raw) == 0 {
		logger.Warn("read request failed", log.Err(err))
		return
	}
	line := strings.TrimSpace(string(raw))
	logger.Info("handling request", log.String("command", line))

	resp, err := handle(ctx, line)
	if err != nil {
		logger.Warn("request failed", log.String("command", line), log.Err(err))
		resp = "error: " + err.Error() + "\n"
	}

	if _, err := conn.Write([]byte(resp)); err != nil {
		logger.Warn("write response failed", log.Err(err))
		return
	}
	logger.Debug("response sent", log.Int("bytes", len(resp)))
}

// Close stops accepting and removes the socket file.
func (s *Server) Close() error {
	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	if rmErr := os.RemoveAll(s.path); rmErr != nil {
		s.logger.Warn("failed to remove socket", log.String("socket", s.path), log.Err(rmErr))
	}
	return err
}
