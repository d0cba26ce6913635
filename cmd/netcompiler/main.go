// Package main is the entry point for the netcompiler CLI.
//
// netcompiler reads packet captures, infers the networks, machines and
// routers they show, and recreates that topology in a remote environment
// through its provisioning API.
//
//	netcompiler -f capture.pcap [more.pcap | capture-dir ...]
package main

import (
	"fmt"
	"os"

	"netcompiler/cmd/netcompiler/commands"
)

// Version information set at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
