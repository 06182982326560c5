package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yardgate-backend/internal/agent"
)

func main() {
	serverURL := flag.String("server", os.Getenv("YARDGATE_SERVER_URL"), "base URL of the yard gate server")
	agentKey := flag.String("key", os.Getenv("YARDGATE_PRINT_KEY"), "pre-shared print agent key")
	deviceID := flag.String("device", envOr("YARDGATE_DEVICE_ID", "GATE-PC-01"), "device identifier reported on claims")
	printerAddr := flag.String("printer-addr", os.Getenv("YARDGATE_PRINTER_ADDR"), "TCP address of the ticket printer (host:9100)")
	printerDev := flag.String("printer-dev", os.Getenv("YARDGATE_PRINTER_DEV"), "printer device path (e.g. /dev/usb/lp0)")
	pollSeconds := flag.Int("poll", 2, "poll interval in seconds")
	flag.Parse()

	if *serverURL == "" || *agentKey == "" {
		log.Fatal("both -server and -key are required (or YARDGATE_SERVER_URL / YARDGATE_PRINT_KEY)")
	}

	var printer agent.Printer
	switch {
	case *printerAddr != "":
		printer = &agent.NetworkPrinter{Addr: *printerAddr}
	case *printerDev != "":
		printer = &agent.DevicePrinter{Path: *printerDev}
	default:
		log.Fatal("one of -printer-addr or -printer-dev is required")
	}

	a := agent.New(agent.Options{
		ServerBaseURL: *serverURL,
		AgentKey:      *agentKey,
		DeviceID:      *deviceID,
		PollInterval:  time.Duration(*pollSeconds) * time.Second,
	}, printer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	a.Run(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
