package main

import "github.com/webhookx-io/showgate/cmd"

func main() {
	cmd.Execute()
}
