// Package server exposes a running engine over HTTP and websockets.
//
// The REST routes map onto control requests and wait for the engine loop
// to apply them. The websocket endpoint streams engine notifications and
// frame summaries, and accepts the same JSON requests as the MQTT bridge.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/motion/internal/control"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/timeline"
)

// Engine is the engine surface the server needs.
type Engine interface {
	control.Engine
	Session() string
	Errors() []error
}

// Server serves one engine.
type Server struct {
	engine   Engine
	frames   *host.FrameQueue
	hub      *Hub
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithHub uses a hub created before the engine, so the engine can be built
// with the hub as its notifier.
func WithHub(h *Hub) Option {
	return func(s *Server) { s.hub = h }
}

// WithFrameInterval sets how often Run ticks the frame queue.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Server) { s.interval = d }
}

// WithRequestTimeout bounds how long a REST request waits for the engine.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// NewHub creates a hub that is not yet attached to an engine.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return newHub(nil, logger)
}

// New creates a server for e. frames may be nil when something else drives
// the frame queue.
func New(e Engine, frames *host.FrameQueue, opts ...Option) *Server {
	s := &Server{
		engine:   e,
		frames:   frames,
		logger:   slog.Default(),
		interval: 16 * time.Millisecond,
		timeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = newHub(e, s.logger)
	}
	s.hub.engine = e
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", func(c *gin.Context) {
		s.hub.serve(c.Writer, c.Request)
	})

	api := r.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/instances", s.getInstances)
		api.POST("/requests", s.postRequest(""))
		api.POST("/playback", s.postRequest(control.TypePlayback))
		api.POST("/stop", s.postRequest(control.TypeStop))
		api.POST("/clear", s.postRequest(control.TypeClear))
		api.POST("/events/:id/fire", s.fireEvent)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Snapshot is the GET /api/state body.
type Snapshot struct {
	Active        bool            `json:"active"`
	Session       string          `json:"session,omitempty"`
	Tick          float64         `json:"tick"`
	MediaQueryKey string          `json:"mediaQueryKey,omitempty"`
	Instances     int             `json:"instances"`
	Playback      map[string]bool `json:"playback,omitempty"`
	Errors        []string        `json:"errors,omitempty"`
}

// InstanceSummary is one entry of GET /api/instances.
type InstanceSummary struct {
	ID           timeline.ID `json:"id"`
	ElementID    string      `json:"elementId"`
	ActionListID string      `json:"actionListId"`
	ActionTypeID string      `json:"actionTypeId"`
	GroupIndex   int         `json:"groupIndex"`
	Position     float64     `json:"position"`
	Continuous   bool        `json:"continuous,omitempty"`
}

func (s *Server) snapshot() Snapshot {
	st := s.engine.State()
	snap := Snapshot{
		Active:        st.Session.Active,
		Session:       s.engine.Session(),
		Tick:          st.Session.Tick,
		MediaQueryKey: st.Session.MediaQueryKey,
		Instances:     st.Instances.Len(),
		Playback:      st.Session.Playback,
	}
	for _, err := range s.engine.Errors() {
		snap.Errors = append(snap.Errors, err.Error())
	}
	return snap
}

func (s *Server) getState(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()
	snap, err := control.Query(ctx, s.engine, s.snapshot)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) getInstances(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()
	list, err := control.Query(ctx, s.engine, func() []InstanceSummary {
		out := []InstanceSummary{}
		s.engine.State().Instances.Each(func(in *timeline.Instance) {
			out = append(out, InstanceSummary{
				ID:           in.ID,
				ElementID:    in.ElementID,
				ActionListID: in.ActionListID,
				ActionTypeID: string(in.ActionItem.ActionTypeID),
				GroupIndex:   in.GroupIndex,
				Position:     in.Position,
				Continuous:   in.Continuous,
			})
		})
		return out
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// postRequest binds a request body. A non-empty typ fixes the request
// type; an empty body is allowed for stop and clear.
func (s *Server) postRequest(typ string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req control.Request
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		if typ != "" {
			req.Type = typ
		}
		s.submit(c, req)
	}
}

func (s *Server) fireEvent(c *gin.Context) {
	var req control.Request
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	req.Type = control.TypeFire
	req.EventID = c.Param("id")
	s.submit(c, req)
}

func (s *Server) submit(c *gin.Context, req control.Request) {
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()
	if err := control.Submit(ctx, s.engine, req); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "type": req.Type})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, control.ErrUnknownEvent):
		status = http.StatusNotFound
	case errors.Is(err, control.ErrNoSession):
		status = http.StatusConflict
	case errors.Is(err, control.ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Run serves addr and, when the server owns a frame queue, ticks it on the
// engine loop. It returns after ctx is cancelled and the listener drained.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if s.frames != nil {
		go s.driveFrames(ctx)
	}

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("control server stopped")
	return nil
}

// driveFrames ticks the frame queue on the engine loop and broadcasts a
// summary of every frame that had running instances.
func (s *Server) driveFrames(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok := s.engine.Enqueue(func() {
				if s.frames.Pending() == 0 {
					return
				}
				now := s.frames.Now()
				s.frames.Tick(now)
				if n := s.engine.State().Instances.Len(); n > 0 {
					s.hub.Frame(FrameSummary{Now: now, Instances: n})
				}
			})
			if !ok {
				return
			}
		}
	}
}
