// Copyright 2025 The WordFan Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordfan suggestion server and CLI.

wordfan turns a partial search string into up to 20 query suggestions. It
appends every single-character suffix (space, then a to z) to the input, asks an
autocomplete provider for each of those 27 expansions at once, and merges the
answers in suffix order with duplicates removed.

# Usage

Serve the GraphQL endpoint on the configured address:

	wordfan serve

Speak msgpack over stdin/stdout for editor integration:

	wordfan ipc

Ask once, or interactively:

	wordfan query golang
	wordfan -d repl

# Configuration

Settings live in a TOML file created with defaults on first run:

	[engine]
	min_query_length = 4
	max_results = 20
	sequential = false

	[provider]
	endpoint = "http://google.com/complete/search"
	timeout_ms = 1000

	[server]
	addr = "127.0.0.1:5000"

Use --config to point at another file, and "wordfan config path" to see which
one is in use. Broken sections fall back to their defaults.

# GraphQL

	POST /graphql
	{"query": "{ autocomplete(query: \"golang\") { suggestions } }"}

returns

	{"data": {"autocomplete": {"suggestions": ["golang tutorial", "golang vs rust"]}}}

Queries shorter than four characters return an empty list without calling the
provider. Provider failures are never surfaced; they only shrink the list.

# IPC Protocol

	{"id": "req1", "q": "golang"}
	{"id": "req1", "s": ["golang tutorial", "golang vs rust"], "c": 2, "t": 412093}

See package server for the full message set.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0"
	AppName = "wordfan"
	gh      = "https://github.com/bastiangx/wordfan"
)

// sigHandler cancels the returned context on SIGINT or SIGTERM.
func sigHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(c)
		select {
		case <-c:
			fmt.Fprintf(os.Stderr, "\nExiting...\n")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// main only wires signals to the app; commands live in commands.go.
func main() {
	ctx, cancel := sigHandler(context.Background())
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// showStartupInfo displays some basic info about the running mode on stderr.
func showStartupInfo(mode, configPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println("  wordfan  ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("mode: %s", mode)
	log.Infof("config: ( %s )", configPath)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
