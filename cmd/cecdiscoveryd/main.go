// Command cecdiscoveryd brings up a libcec connection, runs the HDMI-CEC
// device discovery action against it on request, and exposes the result
// over HTTP, a websocket stream and MQTT, alongside the manual CEC control
// surface the bridge inherited from its ancestor.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/cecdiscoveryd/cecdiscoveryd/cec"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/bridge"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/logx"
)

const version = "0.1.0"

func main() {
	bindAddr := flag.String("bind", ":8080", "Bind address (e.g., :8080 for all interfaces, localhost:8080 for local only)")
	deviceName := flag.String("name", "CEC Discovery Bridge", "Device name advertised on the CEC bus")
	adapterPath := flag.String("adapter", "", "CEC adapter path (auto-detect if empty)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	mqttBroker := flag.String("mqtt-broker", "", "MQTT broker URL (e.g. tcp://localhost:1883). Empty disables MQTT.")
	mqttUser := flag.String("mqtt-user", "", "MQTT username (optional)")
	mqttPass := flag.String("mqtt-pass", "", "MQTT password (optional)")
	mqttPrefix := flag.String("mqtt-prefix", "cecdiscoveryd", "MQTT topic prefix")
	pollRetries := flag.Int("poll-retries", 0, "Device polling retry count (0 keeps the config/default value)")
	queryRetries := flag.Int("query-retries", 0, "Per-stage query retry count (0 keeps the config/default value)")
	timeoutMS := flag.Int("timeout-ms", 0, "Per-stage query timeout in milliseconds (0 keeps the config/default value)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	exe, _ := os.Executable()
	configPath := filepath.Join(filepath.Dir(exe), "config.json")
	cfg := bridge.LoadConfig(configPath)

	if *mqttBroker != "" {
		cfg.MQTT.Broker = *mqttBroker
	}
	if *mqttUser != "" {
		cfg.MQTT.User = *mqttUser
	}
	if *mqttPass != "" {
		cfg.MQTT.Pass = *mqttPass
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mqtt-prefix":
			cfg.MQTT.Prefix = *mqttPrefix
		case "poll-retries":
			cfg.Discovery.PollRetries = *pollRetries
		case "query-retries":
			cfg.Discovery.QueryRetries = *queryRetries
		case "timeout-ms":
			cfg.Discovery.TimeoutMS = *timeoutMS
		}
	})
	if cfg.MQTT.Prefix == "" {
		cfg.MQTT.Prefix = "cecdiscoveryd"
	}

	discoveryCfg := cfg.Discovery.ToActionConfig()

	bridge.Init()
	hub := bridge.NewHub()

	// The router comes up before the CEC connection does (the discovery
	// Runner is built in bringUpCEC once the adapter is open) — the HTTP
	// server must answer health checks and 503s while libcec is still
	// being found, matching the teacher's pattern of
	// starting the server unconditionally and publishing cecConn/cecReady
	// once the adapter goroutine succeeds.
	router := mux.NewRouter()
	bridge.RegisterRoutes(router, hub)

	server := &http.Server{Addr: *bindAddr, Handler: router}

	// The HTTP listener, the CEC bring-up/backoff loop and the shutdown
	// watcher run under one errgroup sharing a context cancelled on
	// SIGINT/SIGTERM, in place of the teacher's unstructured goroutines
	// with no shared cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logx.Printf("http", "listening on %s", *bindAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		bringUpCEC(gctx, *deviceName, *adapterPath, discoveryCfg, cfg, hub)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logx.Println("main", "shutting down")
		bridge.StopMQTT()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logx.Printf("main", "%v", err)
	}
	bridge.CloseCEC()
}

// bringUpCEC opens the libcec adapter with exponential backoff (the bus can
// legitimately take a few tries to settle after boot), then wires the
// discovery Runner, the event hub, and the MQTT bridge on top of it. Run
// under the errgroup so shutdown (ctx cancellation) can interrupt a pending
// backoff sleep instead of waiting it out.
func bringUpCEC(ctx context.Context, deviceName, adapterPath string, discoveryCfg discovery.Config, cfg bridge.Config, hub *bridge.Hub) {
	const maxBackoff = 60 * time.Second
	backoff := 3 * time.Second

	sleep := func(d time.Duration) bool {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d):
			return true
		}
	}

	for {
		logx.Println("cec", "initializing CEC connection")
		conn, err := cec.Open(deviceName, cec.DeviceTypeRecordingDevice)
		if err != nil {
			logx.Printf("cec", "failed to initialize CEC: %v — retrying in %v", err, backoff)
			if !sleep(backoff) {
				return
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		adapter := adapterPath
		if adapter == "" {
			logx.Println("cec", "searching for CEC adapters")
			adapters, err := conn.FindAdapters()
			if err != nil || len(adapters) == 0 {
				logx.Printf("cec", "no CEC adapters found — retrying in %v", backoff)
				conn.Close()
				if !sleep(backoff) {
					return
				}
				backoff = nextBackoff(backoff, maxBackoff)
				continue
			}
			if adapters[0].Comm != "" && strings.HasPrefix(adapters[0].Comm, "/dev/") {
				adapter = adapters[0].Comm
			} else {
				adapter = adapters[0].Path
			}
			logx.Printf("cec", "found adapter: %s", adapter)
		}

		logx.Printf("cec", "opening CEC adapter: %s", adapter)
		if err := conn.OpenAdapter(adapter); err != nil {
			logx.Printf("cec", "failed to open CEC adapter: %v — retrying in %v", err, backoff)
			conn.Close()
			if !sleep(backoff) {
				return
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		logx.Println("cec", "connection established")
		logx.Println("cec", conn.GetLibInfo())

		// Let the bus settle before querying it.
		if !sleep(2 * time.Second) {
			conn.Close()
			return
		}

		localAddrs := conn.GetLogicalAddresses()
		localAddr := discovery.LogicalAddress(cec.LogicalAddressRecordingDevice1)
		if len(localAddrs) > 0 {
			localAddr = discovery.LogicalAddress(localAddrs[0])
		}

		runner := bridge.NewRunner(conn, localAddr, discovery.DeviceTypeRecordingDevice, discoveryCfg, hub,
			func(devices []discovery.DeviceInfo) {
				bridge.PublishDiscoveryDone(cfg.MQTT.Prefix, devices)
			})

		bridge.PublishCEC(conn, runner)

		logx.Println("cec", "adapter is ready")

		if cfg.MQTT.Broker != "" {
			bridge.StartMQTT(cfg.MQTT.Broker, cfg.MQTT.User, cfg.MQTT.Pass, cfg.MQTT.Prefix, runner)
		}
		return
	}
}

func nextBackoff(backoff, max time.Duration) time.Duration {
	backoff *= 2
	if backoff > max {
		return max
	}
	return backoff
}
