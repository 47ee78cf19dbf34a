package main

import "github.com/KaramelBytes/labtrend-cli/cmd"

func main() {
	cmd.Execute()
}
