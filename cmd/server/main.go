package main

import (
	"medsync/cmd/server/cmd"
)

func main() {
	cmd.Execute()
}
