// Command driveguard-watch tails a running daemon's live feeds from a
// terminal. It subscribes to the status or alerts websocket and prints
// one line per update.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"driveguard/pkg/monitor"
)

func main() {
	addr := flag.String("addr", "localhost:8090", "Daemon address (host:port)")
	feed := flag.String("feed", "status", "Feed to watch: status or alerts")
	raw := flag.Bool("raw", false, "Print raw JSON instead of formatted lines")
	flag.Parse()

	if *feed != "status" && *feed != "alerts" {
		fmt.Fprintf(os.Stderr, "unknown feed %q: want status or alerts\n", *feed)
		os.Exit(2)
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/" + *feed}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", u.String(), err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("watching %s\n", u.String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				fmt.Fprintf(os.Stderr, "connection closed: %v\n", err)
				return
			}
			printUpdate(*feed, data, *raw)
		}
	}()

	select {
	case <-done:
	case <-sigChan:
		// Ask the server to close cleanly, then give the read loop a
		// moment to drain.
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func printUpdate(feed string, data []byte, raw bool) {
	if raw {
		fmt.Println(string(data))
		return
	}

	switch feed {
	case "status":
		var snap monitor.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			fmt.Println(string(data))
			return
		}
		fmt.Printf("%s  level=%-8s failures=%-3d face=%-8s eyes=%-8s frame=%d\n",
			snap.Timestamp.Format("15:04:05"),
			snap.Level,
			snap.TotalFailures,
			snap.Pose.FaceOrientation,
			snap.Pose.EyeGaze,
			snap.FrameSeq,
		)
	case "alerts":
		var notice struct {
			Timestamp      time.Time `json:"timestamp"`
			Level          string    `json:"level"`
			TotalFailures  int       `json:"total_failures"`
			Recommendation string    `json:"recommendation"`
		}
		if err := json.Unmarshal(data, &notice); err != nil {
			fmt.Println(string(data))
			return
		}
		fmt.Printf("%s  ALERT %s (failures=%d): %s\n",
			notice.Timestamp.Format("15:04:05"),
			notice.Level,
			notice.TotalFailures,
			notice.Recommendation,
		)
	}
}
