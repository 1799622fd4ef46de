package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"miniball/internal/api"
	"miniball/internal/config"
	"miniball/internal/render"
	"miniball/internal/replay"
	"miniball/internal/vm"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 no .env file found, using environment variables only")
	}

	log.Println("⚽ ================================")
	log.Println("⚽  MINIBALL - DETERMINISTIC HOST")
	log.Println("⚽ ================================")

	cfg := config.Load()

	machine := vm.New()
	log.Printf("🧮 state image: %d octets, simulation %d.%d.%d, tick %d ms",
		vm.StateOctetSize, vm.CurrentVersion.Major, vm.CurrentVersion.Minor, vm.CurrentVersion.Patch, vm.TickDurationMs)

	host := api.NewHost(machine, cfg.Server.MaxParticipants)

	var journal *replay.Journal
	if cfg.Replay.Enabled {
		version := fmt.Sprintf("%d.%d.%d", vm.CurrentVersion.Major, vm.CurrentVersion.Minor, vm.CurrentVersion.Patch)
		j, err := replay.Create(cfg.Replay.Path, version, machine.GetState())
		if err != nil {
			log.Printf("⚠️ replay journal disabled: %v", err)
		} else {
			journal = j
			host.AttachJournal(journal)
			log.Printf("📝 replay journal: %s", cfg.Replay.Path)
		}
	}

	renderer := render.New(cfg.Render.Scale)
	server := api.NewServer(host, renderer)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("💥 server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("👋 shutting down")
	server.Stop()
	if journal != nil {
		journal.Stop()
		total, dropped := journal.Stats()
		log.Printf("📝 journal closed: %d records, %d dropped", total, dropped)
	}
}
