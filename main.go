/*
Copyright © 2024 Veendy

*/
package main

import "github.com/veendy/blink-counter/cmd"

func main() {
	cmd.Execute()
}
