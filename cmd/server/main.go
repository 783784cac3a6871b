package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/AltairaLabs/promptpack-go/api"
	"github.com/AltairaLabs/promptpack-go/internal/config"
	"github.com/AltairaLabs/promptpack-go/internal/store"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := api.NewServer(cfg, st)
	if err != nil {
		return err
	}

	if addr == "" {
		addr = cfg.Server.Addr
	}
	return srv.Run(addr)
}
