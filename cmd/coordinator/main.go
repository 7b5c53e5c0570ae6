// Command coordinator runs the generation-coordinator: it accepts
// worker connections over a websocket, orchestrates self-play sample
// collection, and drives training rounds as generation_size is reached.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/puctzero/puctzero/coordinator"
	"github.com/puctzero/puctzero/store"
	"github.com/puctzero/puctzero/wire"
)

var (
	defaultGame      = flag.String("game", "unnamed", "game name used when synthesising a default config")
	defaultStorePath = flag.String("store_path", "store", "sample/generation store path used when synthesising a default config")
	defaultPort      = flag.Int("port", 4000, "port used when synthesising a default config")
)

var upgrader = websocket.Upgrader{}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	configPath := flag.Arg(0)
	if configPath == "" {
		log.Fatalf("coordinator: usage: coordinator <config-file>")
	}

	conf, err := store.Load(configPath, *defaultGame, *defaultStorePath, *defaultPort)
	if err != nil {
		log.Fatalf("coordinator: load config: %v", err)
	}

	coord := coordinator.New(configPath, conf)
	if err := coord.EnsureNetworksExist(); err != nil {
		log.Fatalf("coordinator: %v", err)
	}

	ctx := context.Background()
	go func() {
		if err := coord.Run(ctx); err != nil {
			log.Fatalf("coordinator: run loop exited: %v", err)
		}
	}()

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("coordinator: upgrade failed: %v", err)
			return
		}
		coord.Accept(wire.NewConn(ws))
	})

	addr := fmt.Sprintf(":%d", conf.Port)
	log.Printf("coordinator: listening on %s", addr)
	log.Fatalf("coordinator: serve: %v", http.ListenAndServe(addr, nil))
}
