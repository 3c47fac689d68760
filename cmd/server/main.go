// Websocket server exposing the defragmentation simulation to a browser
// client: snapshots are pushed at the configured tick rate and client
// messages drive the session. Prometheus gauges are served on /metrics.
package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retrodisk/defragsim/simulator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// Client message types
type ClientMessage struct {
	Type   string               `json:"type"`
	Config *simulator.SimConfig `json:"config,omitempty"`
}

// Server message types
type ServerMessage struct {
	Type     string               `json:"type"`
	Running  *bool                `json:"running,omitempty"`
	Config   *simulator.SimConfig `json:"config,omitempty"`
	Snapshot *simulator.Snapshot  `json:"snapshot,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// simState manages the session and UI pacing for one connection
type simState struct {
	sess    *simulator.Session
	running bool
	mu      sync.Mutex
	stopCh  chan struct{}
}

func newSimState(config simulator.SimConfig) (*simState, error) {
	sess, err := simulator.NewSession(config, nil)
	if err != nil {
		return nil, err
	}
	return &simState{
		sess:   sess,
		stopCh: make(chan struct{}),
	}, nil
}

func (s *simState) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

func (s *simState) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *simState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.HandleCommand(simulator.CommandRestart)
	s.running = false
}

// replace swaps in a session built from a new configuration
func (s *simState) replace(config simulator.SimConfig) error {
	sess, err := simulator.NewSession(config, nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess
	s.running = false
	return nil
}

func (s *simState) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *simState) getConfig() simulator.SimConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Config()
}

// step advances the session by one tick (called by the UI ticker)
func (s *simState) step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.sess.Advance()
	}
}

func (s *simState) snapshot() simulator.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Snapshot()
}

func (s *simState) tickDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.TickDuration()
}

func (s *simState) stop() {
	close(s.stopCh)
}

// uiUpdateLoop periodically advances the session and pushes snapshots to the
// client. Runs in its own goroutine per connection.
func uiUpdateLoop(conn *safeConn, state *simState) {
	ticker := time.NewTicker(state.tickDuration())
	defer ticker.Stop()

	for {
		select {
		case <-state.stopCh:
			log.Println("UI update loop stopping")
			return

		case <-ticker.C:
			if !state.isRunning() {
				continue
			}
			state.step()
			snap := state.snapshot()
			updatePrometheusMetrics(&snap)

			msg := ServerMessage{
				Type:     "snapshot",
				Snapshot: &snap,
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Error sending snapshot: %v", err)
				return
			}
		}
	}
}

// safeConn wraps a WebSocket connection with a mutex to prevent concurrent writes
type safeConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (sc *safeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return sc.Conn.WriteJSON(v)
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	safeConn := &safeConn{Conn: conn}
	log.Println("Client connected")

	config := simulator.DefaultConfig()
	state, err := newSimState(config)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		return
	}

	sendStatus := func() {
		running := state.isRunning()
		cfg := state.getConfig()
		msg := ServerMessage{
			Type:    "status",
			Running: &running,
			Config:  &cfg,
		}
		if err := safeConn.WriteJSON(msg); err != nil {
			log.Printf("Error sending status: %v", err)
		}
	}
	sendStatus()

	go uiUpdateLoop(safeConn, state)

	for {
		var msg ClientMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		log.Printf("Received command: %s", msg.Type)

		switch msg.Type {
		case "start":
			state.start()
			sendStatus()

		case "pause":
			state.pause()
			sendStatus()

		case "reset":
			state.reset()
			sendStatus()

		case "config_update":
			if msg.Config == nil {
				break
			}
			if err := state.replace(*msg.Config); err != nil {
				log.Printf("Error updating config: %v", err)
				safeConn.WriteJSON(ServerMessage{Type: "error", Error: err.Error()})
			} else {
				log.Printf("Config updated: %+v", msg.Config)
				sendStatus()
			}
		}
	}

	state.stop()
	log.Println("Client disconnected")
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>defragsim</title></head>
<body>
<p>defragsim websocket server. Connect a client to <code>/ws</code>;
Prometheus metrics on <code>/metrics</code>.</p>
</body>
</html>
`))

func serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		log.Printf("Error executing template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func quitHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Shutdown requested via /quitquitquit")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Server shutting down...")

	go func() {
		time.Sleep(100 * time.Millisecond)
		log.Println("Server stopped")
		os.Exit(0)
	}()
}

func main() {
	initPrometheusMetrics()

	http.HandleFunc("/", serveHome)
	http.HandleFunc("/ws", handleWebSocket)
	http.HandleFunc("/quitquitquit", quitHandler)
	http.Handle("/metrics", promhttp.Handler())

	addr := ":8080"
	log.Printf("Server starting on http://localhost%s", addr)
	log.Printf("WebSocket endpoint: ws://localhost%s/ws", addr)
	log.Printf("Metrics endpoint: http://localhost%s/metrics", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
