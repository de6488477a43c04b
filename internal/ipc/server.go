// Package ipc exposes the spreadsheet operations via JSON-RPC over a unix
// domain socket.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"github.com/google/uuid"

	"sheetd/internal/daemon"
	"sheetd/internal/excel"
	"sheetd/internal/history"
	"sheetd/internal/logging"
)

// ServiceName is the JSON-RPC service the operations are registered under.
const ServiceName = "Excel"

// Server accepts RPC connections on a unix socket and dispatches them to
// the spreadsheet manager.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, mgr *excel.Manager, hist *history.Store, logger *slog.Logger) (*Server, error) {
	if d == nil || mgr == nil {
		return nil, errors.New("ipc server requires daemon and manager")
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
	svc := &service{daemon: d, mgr: mgr, hist: hist, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName(ServiceName, svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logging.NewComponentLogger(logger, "ipc"),
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
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
				s.logger.Warn("accept failed", logging.Error(err))
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
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	mgr    *excel.Manager
	hist   *history.Store
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(
		logging.String(logging.FieldComponent, "ipc"),
		logging.String(logging.FieldRequestID, uuid.NewString()))
}

// fail records an operation failure in-band. The prefix matches the
// user-facing message format ("Error reading Excel file: ...").
func fail(r *opResult, logger *slog.Logger, prefix string, err error) {
	r.Error = fmt.Sprintf("%s: %v", prefix, err)
	r.ErrorKind = string(excel.KindOf(err))
	logger.Warn("operation failed",
		logging.String("kind", r.ErrorKind),
		logging.Error(err))
}

func (s *service) Sheets(req SheetsRequest, resp *SheetsResponse) error {
	logger := s.log()
	list, err := s.mgr.ListSheets(s.ctx, req.Path)
	if err != nil {
		fail(&resp.opResult, logger, "Error listing sheets", err)
		return nil
	}
	resp.File = list.File
	resp.SizeBytes = list.SizeBytes
	resp.Sheets = list.Sheets
	return nil
}

func (s *service) SheetData(req SheetDataRequest, resp *SheetDataResponse) error {
	logger := s.log()
	records, err := s.mgr.SheetRecords(s.ctx, req.Path, req.Sheet)
	if err != nil {
		fail(&resp.opResult, logger, "Error reading sheet data", err)
		return nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		fail(&resp.opResult, logger, "Error reading sheet data", err)
		return nil
	}
	resp.JSON = string(data)
	return nil
}

func (s *service) Read(req ReadRequest, resp *ReadResponse) error {
	logger := s.log()
	text, err := s.mgr.ReadWorkbook(s.ctx, req.Path, req.Sheet)
	if err != nil {
		fail(&resp.opResult, logger, "Error reading Excel file", err)
		return nil
	}
	resp.Text = text
	return nil
}

func (s *service) Query(req QueryRequest, resp *QueryResponse) error {
	logger := s.log()
	text, err := s.mgr.QueryRows(s.ctx, req.Path, req.Sheet, req.Query)
	if err != nil {
		fail(&resp.opResult, logger, "Error querying Excel data", err)
		return nil
	}
	resp.Text = text
	return nil
}

func (s *service) UpdateCell(req UpdateCellRequest, resp *UpdateCellResponse) error {
	logger := s.log()
	msg, err := s.mgr.UpdateCell(s.ctx, req.Path, req.Sheet, req.Row, req.Column, req.Value)
	if err != nil {
		fail(&resp.opResult, logger, "Error updating cell", err)
		return nil
	}
	resp.Message = msg
	logger.Info("cell updated",
		logging.String("path", req.Path),
		logging.String("sheet", req.Sheet))
	return nil
}

func (s *service) AddRow(req AddRowRequest, resp *AddRowResponse) error {
	logger := s.log()
	msg, err := s.mgr.AddRow(s.ctx, req.Path, req.Sheet, req.Values)
	if err != nil {
		fail(&resp.opResult, logger, "Error adding row", err)
		return nil
	}
	resp.Message = msg
	logger.Info("row added",
		logging.String("path", req.Path),
		logging.String("sheet", req.Sheet))
	return nil
}

func (s *service) CreateSheet(req CreateSheetRequest, resp *CreateSheetResponse) error {
	logger := s.log()
	msg, err := s.mgr.CreateSheet(s.ctx, req.Path, req.Sheet, req.Headers)
	if err != nil {
		fail(&resp.opResult, logger, "Error creating sheet", err)
		return nil
	}
	resp.Message = msg
	logger.Info("sheet created",
		logging.String("path", req.Path),
		logging.String("sheet", req.Sheet))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.Status = s.daemon.Status()
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	logger := s.log()
	records, err := s.hist.List(s.ctx, req.Limit)
	if err != nil {
		fail(&resp.opResult, logger, "Error listing history", err)
		return nil
	}
	resp.Records = records
	return nil
}

func (s *service) HistoryClear(_ HistoryClearRequest, resp *HistoryClearResponse) error {
	logger := s.log()
	removed, err := s.hist.Clear(s.ctx)
	if err != nil {
		fail(&resp.opResult, logger, "Error clearing history", err)
		return nil
	}
	resp.Removed = removed
	return nil
}
