package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/websocket"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream realtime game events",
		Long: `Connect to the websocket gateway and stream game events in real-time.

Events include:
  - character_moved: A character stepped to a new tile

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// GameEvent represents one event received over the websocket
type GameEvent struct {
	Type        string          `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	CharacterID string          `json:"character_id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

func streamEvents(jsonOutput bool) error {
	if cfg.Token == "" {
		return fmt.Errorf("authentication required: login first or pass --token")
	}

	wsURL := websocketURL(cfg.ServerURL) + "/ws"

	config, err := websocket.NewConfig(wsURL, cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	config.Header.Set("Authorization", "Bearer "+cfg.Token)

	conn, err := websocket.DialConfig(config)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Handle interrupt by closing the connection, which unblocks Receive
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			_ = conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	if !jsonOutput {
		fmt.Println("Connected. Waiting for events...")
	}

	for {
		var raw string
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		}
		printEvent(raw, jsonOutput)
	}
}

func printEvent(raw string, jsonOutput bool) {
	var evt GameEvent
	if err := json.Unmarshal([]byte(raw), &evt); err != nil || evt.Type == "" {
		return
	}
	if evt.Type == "ping" {
		return
	}

	if jsonOutput {
		fmt.Println(raw)
		return
	}

	timestamp := evt.Timestamp.Format("2006-01-02 15:04:05")
	payload := strings.ReplaceAll(string(evt.Payload), "\n", " ")
	fmt.Printf("[%s] %s %s %s\n", timestamp, evt.Type, evt.CharacterID, payload)
}

// websocketURL rewrites an http(s) base URL to its ws(s) equivalent
func websocketURL(baseURL string) string {
	base := strings.TrimSuffix(baseURL, "/")
	if rest, ok := strings.CutPrefix(base, "https://"); ok {
		return "wss://" + rest
	}
	if rest, ok := strings.CutPrefix(base, "http://"); ok {
		return "ws://" + rest
	}
	return base
}
