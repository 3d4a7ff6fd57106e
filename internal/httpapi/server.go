package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/murmurhq/murmur/internal/admission"
	"github.com/murmurhq/murmur/internal/escalation"
	"github.com/murmurhq/murmur/internal/infra"
	"github.com/murmurhq/murmur/internal/ledger"
)

// Pipeline is the admission surface the API exposes.
type Pipeline interface {
	SubmitPost(ctx context.Context, sub admission.Submission) (*admission.Result, error)
	SubmitComment(ctx context.Context, sub admission.Submission) (*admission.Result, error)
	Report(ctx context.Context, postID, reporterID, reason string) (escalation.Outcome, error)
	CheckBan(ctx context.Context, fingerprint string) ledger.BanStatus
}

// Server is the JSON transport in front of the admission pipeline.
type Server struct {
	pipeline Pipeline
	addr     string
	logger   *log.Entry

	runMutex  sync.Mutex
	started   bool
	runCancel context.CancelFunc
	workersWg sync.WaitGroup
	httpSrv   *http.Server
}

func NewServer(pipeline Pipeline, addr string) *Server {
	return &Server{
		pipeline: pipeline,
		addr:     addr,
		logger:   log.WithField("service", "httpapi"),
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts", s.handlePosts)
	mux.HandleFunc("/api/comments", s.handleComments)
	mux.HandleFunc("/api/reports", s.handleReports)
	mux.HandleFunc("/api/ban-check", s.handleBanCheck)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if s.started {
		return nil
	}

	_, cancel := context.WithCancel(ctx)
	s.runCancel = cancel

	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.workersWg.Add(1)
	go infra.GoRecoverable(0, "httpapi_listen", func() {
		defer s.workersWg.Done()
		s.logger.WithField("addr", s.addr).Info("listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("http server failed")
		}
	})

	s.started = true
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if !s.started {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.WithError(err).Warn("shutdown")
	}

	s.runCancel()
	s.workersWg.Wait()
	s.started = false
	return nil
}
