package main

import (
	"flag"
	"log"

	"lodterrain/internal/config"
	"lodterrain/internal/game"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gopxl/mainthread/v2"
)

func main() {
	configPath := flag.String("config", "", "terrain config YAML (defaults when empty)")
	fpsLimit := flag.Int("fps", config.GetFPSLimit(), "frame cap, 0 for uncapped")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("[viewer] %v", err)
		}
	}
	config.SetFPSLimit(*fpsLimit)

	mainthread.Run(func() {
		if err := run(cfg, *width, *height); err != nil {
			log.Fatalf("[viewer] %v", err)
		}
	})
}

func run(cfg config.Config, width, height int) error {
	var window *glfw.Window
	err := mainthread.CallErr(func() error {
		if err := glfw.Init(); err != nil {
			return err
		}
		var err error
		window, err = game.SetupWindow(width, height)
		return err
	})
	if err != nil {
		return err
	}
	defer mainthread.Call(glfw.Terminate)

	app, err := game.NewApp(window, cfg)
	if err != nil {
		return err
	}
	app.Run()
	return nil
}
