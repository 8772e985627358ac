package main

import "github.com/Tiliavir/timesheet-ledger/cmd"

func main() {
	cmd.Execute()
}
