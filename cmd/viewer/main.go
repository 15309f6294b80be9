// cmd/viewer/main.go
package main

import (
	"context"
	"flag"
	"log"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-clothsim/pkg/config"
	"github.com/opd-ai/go-clothsim/pkg/network"
	engorender "github.com/opd-ai/go-clothsim/pkg/render/engo"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:8080/ws", "Simulation server websocket URL")
	fullscreen := flag.Bool("fullscreen", false, "Run in fullscreen mode")
	width := flag.Int("width", 1024, "Window width")
	height := flag.Int("height", 768, "Window height")
	flag.Parse()

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load environment configuration: %v", err)
	}

	client := network.NewSimClient(*serverURL, envConfig)

	log.Printf("Connecting to server at %s", *serverURL)
	if err := client.Connect(context.Background()); err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	log.Printf("Connected, cloth grid %dx%d", client.Hello().Dim, client.Hello().Dim)

	scene := engorender.NewViewerScene(client)

	opts := engo.RunOptions{
		Title:      "Cloth Viewer",
		Width:      *width,
		Height:     *height,
		Fullscreen: *fullscreen,
	}

	engo.Run(opts, scene)
}
