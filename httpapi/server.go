package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/danielbahrami/SE08-SP/fsm"
	"github.com/go-chi/chi/v5"
)

// Lock is the part of the smart lock the endpoint needs.
type Lock interface {
	Snapshot() fsm.Snapshot
	Submit(command string) error
}

type stateResponse struct {
	State          string `json:"state"`
	ErrorCondition string `json:"errorCondition,omitempty"`
	Color          [3]int `json:"color"`
}

type Server struct {
	lock Lock
	srv  *http.Server
}

func NewServer(addr string, lock Lock) *Server {
	s := &Server{lock: lock}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/state", s.getState)
	r.Post("/commands/{command}", s.postCommand)
	return r
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("httpapi - listening on %s", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	snapshot := s.lock.Snapshot()
	color := snapshot.State.Color()

	writeJSON(w, http.StatusOK, stateResponse{
		State:          snapshot.State.String(),
		ErrorCondition: snapshot.ErrorCondition,
		Color:          [3]int{int(color.R), int(color.G), int(color.B)},
	})
}

func (s *Server) postCommand(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")

	if err := s.lock.Submit(command); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi - could not write response: %s", err)
	}
}
