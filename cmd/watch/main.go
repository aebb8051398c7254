// Command watch tails a running simulation's status stream and prints a
// one-line summary per tick.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
)

type status struct {
	Tick            uint64 `json:"tick"`
	AgentCount      int    `json:"agent_count"`
	ActionsExecuted int    `json:"actions_executed"`
	Agents          []struct {
		Name string `json:"name"`
		Task string `json:"task"`
	} `json:"agents"`
}

func main() {
	addr := flag.String("addr", "localhost:8080", "simulation host:port")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/api/v1/stream", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", url, err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Printf("watching %s\n", url)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	frames := make(chan []byte)
	go func() {
		defer close(frames)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames <- msg
		}
	}()

	for {
		select {
		case <-interrupt:
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg, ok := <-frames:
			if !ok {
				fmt.Fprintln(os.Stderr, "stream closed")
				return
			}
			var st status
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			busy := 0
			for _, a := range st.Agents {
				if a.Task != "" {
					busy++
				}
			}
			fmt.Printf("tick %6d  agents %2d  busy %2d  actions %2d\n",
				st.Tick, st.AgentCount, busy, st.ActionsExecuted)
		}
	}
}
