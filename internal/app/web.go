package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6500_lab/internal/config"
	"github.com/relabs-tech/mpu6500_lab/internal/imu"
	"github.com/relabs-tech/mpu6500_lab/internal/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// sampleHub keeps the latest sample and fans new ones out to websocket
// clients. Slow clients miss samples instead of blocking the MQTT callback.
type sampleHub struct {
	mu   sync.RWMutex
	last imu.Sample
	have bool
	subs map[chan imu.Sample]struct{}
}

func newSampleHub() *sampleHub {
	return &sampleHub{subs: make(map[chan imu.Sample]struct{})}
}

func (h *sampleHub) update(s imu.Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = s
	h.have = true
	for ch := range h.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

func (h *sampleHub) latest() (imu.Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *sampleHub) subscribe() chan imu.Sample {
	ch := make(chan imu.Sample, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *sampleHub) unsubscribe(ch chan imu.Sample) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// RunWeb serves the latest sample from TOPIC_IMU over HTTP and websocket.
func RunWeb(log *logrus.Entry) error {
	log = logging.For(log, "web")
	cfg := config.Get()
	hub := newSampleHub()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeSamples(client, cfg.TopicIMU, log, hub.update); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Infof("web server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(hub, "web", log))
}

func newWebMux(hub *sampleHub, staticDir string, log *logrus.Entry) *http.ServeMux {
	mux := http.NewServeMux()

	// JSON API endpoint: latest sample
	mux.HandleFunc("/api/imu", func(w http.ResponseWriter, r *http.Request) {
		s, ok := hub.latest()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s); err != nil {
			log.Warnf("json encode error: %v", err)
		}
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleSampleWS(hub, w, r, log)
	})

	// Static files as the root
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

// handleSampleWS pushes the latest sample, then every new one, until the
// client goes away.
func handleSampleWS(hub *sampleHub, w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	// The client never sends anything; reading only detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debugf("websocket read error: %v", err)
				}
				return
			}
		}
	}()

	if s, ok := hub.latest(); ok {
		if err := conn.WriteJSON(s); err != nil {
			return
		}
	}
	for {
		select {
		case <-done:
			return
		case s := <-ch:
			if err := conn.WriteJSON(s); err != nil {
				log.Debugf("websocket write error: %v", err)
				return
			}
		}
	}
}
