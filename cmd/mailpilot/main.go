package main

import (
	"log"

	mailpilot "github.com/mailpilot/mailpilot"
	"github.com/mailpilot/mailpilot/server"
	"github.com/mailpilot/mailpilot/stores"
	"github.com/mailpilot/mailpilot/voice"
)

func main() {
	cfg := mailpilot.LoadConfig()

	var traces stores.TraceStore
	if cfg.TraceEnabled {
		store, err := stores.NewTraceStore(cfg.TraceStore)
		if err != nil {
			log.Printf("tool tracing disabled: %v", err)
		} else {
			traces = store
		}
	}

	cache := voice.NewAgentCache(cfg.VoiceAgentTTL, nil)
	sweeper := cache.StartSweeper()
	defer sweeper.Stop()

	provisioner := &voice.Provisioner{Cache: cache}

	srv := server.New(traces, provisioner)
	router := srv.Router()

	log.Printf("listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
