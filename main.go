package main

import "sentiboard/internal/app"

func main() {
	app.Main()
}
