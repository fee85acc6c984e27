package main

import "github.com/strooper/strooper-wallet/cmd/strooper-cli/cmd"

func main() {
	cmd.Execute()
}
