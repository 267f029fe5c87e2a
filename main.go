package main

import "github.com/railwayapp/compositor/cmd/compositor"

func main() {
	compositor.Execute()
}
