package main

import (
	"flag"
	"log"
	"os"

	"github.com/gravlens/go-gravlens/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	skyPath := flag.String("sky", "", "Background sky image (PNG/JPEG); empty uses the generated starfield")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port, *skyPath)

	log.Printf("Gravitational Lensing Web Server")
	log.Printf("Visit http://localhost:%d/api/frame for a single frame", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
