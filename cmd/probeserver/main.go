// Command probeserver runs the client CPU/network reliability probe:
// a gin HTTP server exposing a single WebSocket upgrade route, plus
// Prometheus metrics and a liveness endpoint, mirroring the teacher's
// cmd/api and cmd/stratum entry points (env-driven config, gin router,
// signal-driven graceful shutdown).
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ParthDesai/reliability-measurement-server/internal/acceptor"
	"github.com/ParthDesai/reliability-measurement-server/internal/config"
	"github.com/ParthDesai/reliability-measurement-server/internal/directory"
	"github.com/ParthDesai/reliability-measurement-server/internal/metrics"
	"github.com/ParthDesai/reliability-measurement-server/internal/session"
	"github.com/ParthDesai/reliability-measurement-server/internal/timelock"
	"github.com/ParthDesai/reliability-measurement-server/internal/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func main() {
	log.Println("🚀 Starting reliability probe server...")

	cfg := config.LoadProbeConfig()

	collector := metrics.New()
	dir := directory.New()
	pool := timelock.NewPool(cfg.WorkerPoolSize)
	driver, err := session.NewDriver(cfg.SessionConfig(), pool, dir, collector)
	if err != nil {
		log.Fatalf("invalid session configuration: %v", err)
	}
	acc := acceptor.New(driver, collector)

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.GET("/ws", func(c *gin.Context) {
		// The upgrade response must carry this header regardless of the
		// requesting origin so browser-based clients can connect.
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		channel := transport.NewWebSocketChannel(conn)
		acc.Go(c.Request.Context(), channel)
	})

	router.GET("/healthz", gin.WrapF(metrics.HealthHandler))
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("✅ Listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	acc.Wait()
	log.Println("✅ Exited gracefully")
}
