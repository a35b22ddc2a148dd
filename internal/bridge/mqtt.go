package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"

	"github.com/cecdiscoveryd/cecdiscoveryd/cec"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
	"github.com/cecdiscoveryd/cecdiscoveryd/internal/logx"
)

var (
	mqttClient mqttlib.Client
	mqttMu     sync.Mutex
	mqttCancel context.CancelFunc
)

// StopMQTT disconnects the MQTT client and cancels the event-forwarding
// goroutine. Safe to call when nothing is connected.
func StopMQTT() {
	mqttMu.Lock()
	defer mqttMu.Unlock()
	if mqttCancel != nil {
		mqttCancel()
		mqttCancel = nil
	}
	if mqttClient != nil && mqttClient.IsConnected() {
		mqttClient.Disconnect(1000)
		logx.Println("mqtt", "disconnected")
	}
	mqttClient = nil
}

// StartMQTT connects to the broker, subscribes to command topics (manual
// control plus {prefix}/command/discovery/start), and forwards EventHub events to MQTT
// publish topics. Safe to call multiple times; previous connections are
// torn down first. runner may be nil if no CEC connection is available yet.
func StartMQTT(broker, user, pass, prefix string, runner *Runner) {
	StopMQTT()

	host, _ := os.Hostname()
	opts := mqttlib.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("cecdiscoveryd-%s-%d", host, os.Getpid())).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(10 * time.Second).
		SetOnConnectHandler(func(c mqttlib.Client) {
			logx.Printf("mqtt", "connected to %s", broker)
			cmdTopic := prefix + "/command/#"
			token := c.Subscribe(cmdTopic, 1, func(_ mqttlib.Client, msg mqttlib.Message) {
				handleMQTTCommand(prefix, msg.Topic(), msg.Payload(), runner)
			})
			if token.Wait() && token.Error() != nil {
				logx.Printf("mqtt", "subscribe failed: %v", token.Error())
			} else {
				logx.Printf("mqtt", "subscribed to %s", cmdTopic)
			}
		}).
		SetConnectionLostHandler(func(_ mqttlib.Client, err error) {
			logx.Printf("mqtt", "connection lost: %v", err)
		})

	if user != "" {
		opts.SetUsername(user)
	}
	if pass != "" {
		opts.SetPassword(pass)
	}

	ctx, cancel := context.WithCancel(context.Background())

	mqttMu.Lock()
	mqttCancel = cancel
	mqttClient = mqttlib.NewClient(opts)
	client := mqttClient
	mqttMu.Unlock()

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logx.Printf("mqtt", "initial connection failed (will retry): %v", token.Error())
	}

	go func() {
		ch := eventHub.Subscribe()
		defer eventHub.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				mqttMu.Lock()
				c := mqttClient
				mqttMu.Unlock()
				if c == nil || !c.IsConnected() {
					continue
				}
				payload, err := json.Marshal(ev.Data)
				if err != nil {
					continue
				}
				c.Publish(prefix+"/event/"+ev.Type, 0, false, payload)
			}
		}
	}()
}

// PublishDiscoveryDone is the onDone hook a Runner is built with — it fans
// the finished inventory out over {prefix}/discovery/result and one
// {prefix}/discovery/device/{n} retained message per device, so a fresh
// MQTT subscriber sees the last run without waiting for the next one. A nil
// or disconnected client is a no-op: discovery still completes, it just has
// no MQTT subscriber to tell.
func PublishDiscoveryDone(prefix string, devices []discovery.DeviceInfo) {
	mqttMu.Lock()
	c := mqttClient
	mqttMu.Unlock()
	if c == nil || !c.IsConnected() {
		return
	}

	views := make([]DeviceView, len(devices))
	for i, d := range devices {
		views[i] = viewOf(d)
	}

	payload, err := json.Marshal(views)
	if err != nil {
		return
	}
	c.Publish(prefix+"/discovery/result", 0, true, payload)

	for _, v := range views {
		devPayload, err := json.Marshal(v)
		if err != nil {
			continue
		}
		c.Publish(fmt.Sprintf("%s/discovery/device/%d", prefix, v.LogicalAddress), 0, true, devPayload)
	}
}

// handleMQTTCommand dispatches an incoming MQTT message. Topic format:
// {prefix}/command/{action}[/{param}]. Adds discovery/start to the
// teacher's manual-control command set.
func handleMQTTCommand(prefix, topic string, payload []byte, runner *Runner) {
	cecMutex.Lock()
	ready := cecReady
	cecMutex.Unlock()

	cmdPath := strings.TrimPrefix(topic, prefix+"/command/")

	// discovery/start doesn't touch the manual-control surface and is
	// handled before the readiness check the other commands below need: a
	// nil runner means no CEC connection yet, and Runner.Start rejects a
	// request while a previous run is still in progress.
	if cmdPath == "discovery/start" {
		if runner == nil {
			logx.Println("mqtt", "ignoring discovery/start: no CEC connection")
			return
		}
		if err := runner.Start(); err != nil {
			logx.Printf("mqtt", "discovery start rejected: %v", err)
		}
		return
	}

	if !ready {
		logx.Printf("mqtt", "ignoring command %q: CEC adapter not available", topic)
		return
	}

	switch cmdPath {
	case "power/on":
		addr := parseMQTTAddress(payload, 0)
		if addr < 0 || addr > 15 {
			logx.Printf("mqtt", "power/on: invalid address %q", string(payload))
			return
		}
		cecMutex.Lock()
		err := cecConn.PowerOn(cec.LogicalAddress(addr))
		cecMutex.Unlock()
		if err != nil {
			logx.Printf("mqtt", "power/on failed: %v", err)
		}

	case "power/off":
		addr := parseMQTTAddress(payload, 0)
		if addr < 0 || addr > 15 {
			logx.Printf("mqtt", "power/off: invalid address %q", string(payload))
			return
		}
		cecMutex.Lock()
		err := cecConn.Standby(cec.LogicalAddress(addr))
		cecMutex.Unlock()
		if err != nil {
			logx.Printf("mqtt", "power/off failed: %v", err)
		}

	case "volume/up":
		cecMutex.Lock()
		err := cecConn.VolumeUp(true)
		cecMutex.Unlock()
		if err != nil {
			logx.Printf("mqtt", "volume/up failed: %v", err)
		}

	case "volume/down":
		cecMutex.Lock()
		err := cecConn.VolumeDown(true)
		cecMutex.Unlock()
		if err != nil {
			logx.Printf("mqtt", "volume/down failed: %v", err)
		}

	case "volume/mute":
		cecMutex.Lock()
		err := cecConn.AudioToggleMute()
		cecMutex.Unlock()
		if err != nil {
			logx.Printf("mqtt", "volume/mute failed: %v", err)
		}

	case "source":
		addr := parseMQTTAddress(payload, -1)
		if addr < 0 || addr > 15 {
			logx.Printf("mqtt", "source: invalid address %q", string(payload))
			return
		}
		cecMutex.Lock()
		err := cecConn.SwitchToDevice(cec.LogicalAddress(addr))
		cecMutex.Unlock()
		if err != nil {
			logx.Printf("mqtt", "source failed: %v", err)
		}

	case "hdmi":
		port := parseMQTTAddress(payload, -1)
		if port < 1 || port > 15 {
			logx.Printf("mqtt", "hdmi: invalid port %q", string(payload))
			return
		}
		cecMutex.Lock()
		err := cecConn.SwitchToHDMIPort(uint8(port))
		cecMutex.Unlock()
		if err != nil {
			logx.Printf("mqtt", "hdmi failed: %v", err)
		}

	default:
		logx.Printf("mqtt", "unknown command topic: %s", topic)
	}
}

func parseMQTTAddress(payload []byte, defaultVal int) int {
	s := strings.TrimSpace(string(payload))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
