package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/callmeback/callbackd/internal/devserver"
)

func main() {
	addr := flag.String("addr", ":8001", "listen address")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	srv := devserver.NewServer(log)

	log.Info().Str("addr", *addr).Msg("devserver listening")
	if err := http.ListenAndServe(*addr, srv); err != nil {
		fmt.Fprintf(os.Stderr, "devserver failed: %v\n", err)
		os.Exit(1)
	}
}
