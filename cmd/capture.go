package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/gopacket/pcap"
	"github.com/google/gopacket/pcapgo"
)

const (
	captureSnapLen = 65535
	// captureReadTimeout lets the read loop notice a stop request while the
	// link is idle.
	captureReadTimeout = 500 * time.Millisecond
)

var errNoCaptureDevice = errors.New("no capture device available")

// captureSetupMu serializes device lookup and activation across hosts.
var captureSetupMu sync.Mutex

// packetRecorder writes the traffic of one host to a savefile until stopped.
type packetRecorder interface {
	path() string
	record(stop <-chan struct{}) (int, error)
	Close() error
}

type pcapRecorder struct {
	handle *pcap.Handle
	file   *os.File
	buf    *bufio.Writer
	w      *pcapgo.Writer
	out    string
}

// openCapture arms a live capture on the default device filtered to
// "host <address>" and creates <dir>/<address>.pcap. It returns once the
// filter is installed, so traffic sent afterwards is recorded.
func openCapture(address, dir string) (packetRecorder, error) {
	captureSetupMu.Lock()
	defer captureSetupMu.Unlock()

	devs, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("lookup device: %w", err)
	}
	if len(devs) == 0 {
		return nil, errNoCaptureDevice
	}

	inactive, err := pcap.NewInactiveHandle(devs[0].Name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devs[0].Name, err)
	}
	defer inactive.CleanUp()
	if err := inactive.SetSnapLen(captureSnapLen); err != nil {
		return nil, fmt.Errorf("snaplen: %w", err)
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return nil, fmt.Errorf("immediate mode: %w", err)
	}
	if err := inactive.SetTimeout(captureReadTimeout); err != nil {
		return nil, fmt.Errorf("read timeout: %w", err)
	}
	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("activate %s: %w", devs[0].Name, err)
	}
	if err := handle.SetBPFFilter("host " + address); err != nil {
		handle.Close()
		return nil, fmt.Errorf("filter: %w", err)
	}

	out := filepath.Join(dir, address+".pcap")
	f, err := os.Create(out)
	if err != nil {
		handle.Close()
		return nil, fmt.Errorf("savefile: %w", err)
	}
	buf := bufio.NewWriter(f)
	w := pcapgo.NewWriter(buf)
	if err := w.WriteFileHeader(captureSnapLen, handle.LinkType()); err != nil {
		_ = f.Close()
		handle.Close()
		return nil, fmt.Errorf("savefile header: %w", err)
	}
	return &pcapRecorder{handle: handle, file: f, buf: buf, w: w, out: out}, nil
}

func (r *pcapRecorder) path() string { return r.out }

// record appends packets to the savefile until stop is closed or a read
// fails. Read timeouts on an idle link are not failures.
func (r *pcapRecorder) record(stop <-chan struct{}) (int, error) {
	n := 0
	for {
		select {
		case <-stop:
			return n, nil
		default:
		}
		data, ci, err := r.handle.ReadPacketData()
		if errors.Is(err, pcap.NextErrorTimeoutExpired) {
			continue
		}
		if err != nil {
			return n, err
		}
		if err := r.w.WritePacket(ci, data); err != nil {
			return n, fmt.Errorf("write packet: %w", err)
		}
		n++
	}
}

// Close flushes and closes the savefile and releases the capture handle.
func (r *pcapRecorder) Close() error {
	defer r.handle.Close()
	if err := r.buf.Flush(); err != nil {
		_ = r.file.Close()
		return err
	}
	return r.file.Close()
}
