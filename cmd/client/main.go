// Command client is a headless plan monitor: it connects to a stageset
// server, mirrors the shared document locally and logs every confirmed
// event.  Useful for watching a show from a terminal and for exercising
// the reconnect path against a live server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/stageset/stageset/internal/client"
	"github.com/stageset/stageset/internal/protocol"
)

func main() {
	serverURL := flag.String("server", "http://127.0.0.1:3000", "base URL of the stageset server")
	token := flag.String("token", os.Getenv("STAGESET_TOKEN"), "bearer token when the server requires auth")
	flag.Parse()

	c, err := client.New(*serverURL, *token)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	c.OnStatus = func(s client.Status) {
		log.Printf("transport: %s", s)
	}
	c.OnError = func(tempID, message string) {
		log.Printf("rejected: %s (tempId=%s)", message, tempID)
	}
	c.OnEvent = func(e protocol.Event) {
		switch ev := e.(type) {
		case protocol.NotifyTriggered:
			log.Printf("notification: %s %s (event=%s)", ev.Preset.Emoji, ev.Preset.Label, ev.EventID)
		case protocol.ShowChanged:
			log.Printf("show changed: %q (%d songs, %d mics)", ev.Show, len(ev.State.Songs), len(ev.State.Mics))
		default:
			log.Printf("event: %s", e.EventType())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("client stopped: %v", err)
	}
}
