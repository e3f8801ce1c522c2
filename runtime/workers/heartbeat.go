package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/SergioBarbosa7/socket-chat/contract"
	"github.com/SergioBarbosa7/socket-chat/domain"
)

// HeartbeatWorker periodically pushes a HEARTBEAT frame to every online
// session and logs the server's own CPU/RSS figures. It detects nothing:
// stale-connection eviction is deliberately not implemented, a failed push
// is only logged.
type HeartbeatWorker struct {
	log      *slog.Logger
	sessions contract.ISessionManager
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, sessions contract.ISessionManager, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, sessions: sessions, interval: interval}
}

// Run executes the main loop of the worker, fanning heartbeats out every
// interval until the context is canceled.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.beat()
			w.logSelfStats(p)
		}
	}
}

func (w *HeartbeatWorker) beat() {
	for _, user := range w.sessions.Users() {
		if !user.Online {
			continue
		}
		conn, ok := w.sessions.GetConnection(user.Username)
		if !ok {
			continue
		}
		beat := domain.NewMessage(domain.TypeHeartbeat, domain.ServerUser, user.Username, "")
		if err := conn.Send(beat); err != nil {
			w.log.Warn("Heartbeat push failed", "user", user.Username, "error", err)
		}
	}
}

// logSelfStats retrieves technical metrics (memory, CPU and OS status) for
// the server process.
func (w *HeartbeatWorker) logSelfStats(p *process.Process) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
		return
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
		return
	}
	status, err := p.Status()
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
		return
	}
	w.log.Debug("Server self stats",
		"pid", os.Getpid(), "status", status,
		"cpu_percent", cpuPercent, "rss_bytes", memInfo.RSS)
}
