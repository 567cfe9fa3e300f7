package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gorilla/websocket"
)

// small manual client for watching progress events during development:
// go run ./internal/api/ws_client -addr localhost:8080 -id 42
func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	id := flag.String("id", "1", "telegram id to subscribe as")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/api/v1/ws/%s", *addr, *id)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	log.Printf("listening on %s", url)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		log.Printf("event: %s", message)
	}
}
