package agent

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Printer sends raw ticket text to physical hardware.
type Printer interface {
	Print(text string) error
}

// Tickets get a few feed lines so the tear-off edge clears the print head.
const feed = "\n\n\n\n"

// NetworkPrinter writes raw text to a printer listening on a TCP port
// (ESC/POS printers conventionally listen on 9100).
type NetworkPrinter struct {
	Addr    string
	Timeout time.Duration
}

func (p *NetworkPrinter) Print(text string) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := net.DialTimeout("tcp", p.Addr, timeout)
	if err != nil {
		return fmt.Errorf("dial printer %s: %w", p.Addr, err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(text + feed)); err != nil {
		return fmt.Errorf("write to printer %s: %w", p.Addr, err)
	}
	return nil
}

// DevicePrinter appends raw text to a spool device path (e.g. /dev/usb/lp0).
type DevicePrinter struct {
	Path string
}

func (p *DevicePrinter) Print(text string) error {
	f, err := os.OpenFile(p.Path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("open printer device %s: %w", p.Path, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(text + feed)); err != nil {
		return fmt.Errorf("write to printer device %s: %w", p.Path, err)
	}
	return nil
}
