package main

import "cq-suite/src/handler/cli"

func main() {
	cli.Run()
}
