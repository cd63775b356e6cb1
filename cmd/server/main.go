package main

import "github.com/soaringjerry/clima/internal/app"

// Set at build time with -ldflags "-X main.version=... -X main.buildTime=...".
var (
	version   = "dev"
	buildTime = ""
)

func main() {
	app.SetVersion(version, buildTime)
	app.Execute()
}
