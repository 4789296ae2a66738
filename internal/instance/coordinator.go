package instance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/GriffinCanCode/webshell/internal/monitoring"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrNotPrimary is returned by Acquire when another instance holds the lock.
var ErrNotPrimary = errors.New("another instance is already running")

const (
	dialTimeout     = time.Second
	shutdownTimeout = 2 * time.Second
)

// ActivateFunc is invoked for every activation request from a later launch.
type ActivateFunc func(ctx context.Context, args []string) error

// ActivateRequest is the body of POST /activate.
type ActivateRequest struct {
	Args []string `json:"args"`
	PID  int      `json:"pid"`
}

// Coordinator holds the instance lock of the primary process.
type Coordinator struct {
	path     string
	listener net.Listener
	log      *zap.Logger

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// Acquire binds the instance socket at path. It returns ErrNotPrimary when a
// live primary already listens there.
func Acquire(path string, log *zap.Logger) (*Coordinator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}

	// Launchers take turns, so a reclaim never removes a socket another
	// launcher has just bound.
	unlock, err := lockFile(path + ".lock")
	if err != nil {
		return nil, fmt.Errorf("lock instance socket: %w", err)
	}
	defer unlock()

	listener, err := net.Listen("unix", path)
	if err != nil {
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("bind instance socket: %w", err)
		}
		if alive(path) {
			return nil, ErrNotPrimary
		}

		log.Info("Reclaiming stale instance socket", zap.String("path", path))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
		if listener, err = net.Listen("unix", path); err != nil {
			return nil, fmt.Errorf("bind instance socket: %w", err)
		}
	}

	if err := os.Chmod(path, 0o600); err != nil {
		log.Warn("Failed to restrict socket permissions", zap.Error(err))
	}

	log.Info("Instance lock acquired", zap.String("path", path))
	return &Coordinator{path: path, listener: listener, log: log}, nil
}

// alive reports whether something accepts connections on path.
func alive(path string) bool {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Path returns the socket path.
func (c *Coordinator) Path() string {
	return c.path
}

// Router builds the instance API.
func (c *Coordinator) Router(activate ActivateFunc, metrics *monitoring.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"pid":    os.Getpid(),
		})
	})

	router.POST("/activate", throttle(activationRate, activationBurst), func(ctx *gin.Context) {
		var req ActivateRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.log.Info("Activation requested", zap.Int("pid", req.PID), zap.Strings("args", req.Args))
		if err := activate(ctx.Request.Context(), req.Args); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusAccepted, gin.H{"status": "activated"})
	})

	return router
}

// Serve answers activation requests until Close. It returns nil after a
// clean shutdown.
func (c *Coordinator) Serve(activate ActivateFunc, metrics *monitoring.Metrics) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	server := &http.Server{
		Handler:           c.Router(activate, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	c.server = server
	c.mu.Unlock()

	if err := server.Serve(c.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("instance api: %w", err)
	}
	return nil
}

// Close releases the instance lock.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	defer c.log.Info("Instance lock released", zap.String("path", c.path))

	if c.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return c.server.Shutdown(ctx)
	}
	if err := c.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
