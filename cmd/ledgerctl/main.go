package main

import "time-ledger/cmd/ledgerctl/cmd"

func main() {
	cmd.Execute()
}
