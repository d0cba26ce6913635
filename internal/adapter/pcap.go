package adapter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/rs/zerolog"
)

var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// packetReader is implemented by both pcapgo readers
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// PcapAdapter reads capture files
type PcapAdapter struct {
	paths    []string
	log      zerolog.Logger
	withHTTP bool
}

// PcapOption configures a PcapAdapter
type PcapOption func(*PcapAdapter)

// WithLogger sets the adapter logger
func WithLogger(l zerolog.Logger) PcapOption {
	return func(a *PcapAdapter) { a.log = l }
}

// WithHTTPMetadata enables or disables HTTP header extraction
func WithHTTPMetadata(enabled bool) PcapOption {
	return func(a *PcapAdapter) { a.withHTTP = enabled }
}

// NewPcapAdapter creates an adapter over capture files and directories
func NewPcapAdapter(paths []string, opts ...PcapOption) *PcapAdapter {
	a := &PcapAdapter{
		paths:    paths,
		log:      zerolog.Nop(),
		withHTTP: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the adapter identifier
func (a *PcapAdapter) Name() string {
	return "pcap"
}

// Sync reads every capture file into sink. Unreadable files are recorded
// in the result and skipped; a sink error stops the sync.
func (a *PcapAdapter) Sync(ctx context.Context, sink Sink) (*SyncResult, error) {
	result := &SyncResult{}

	for _, path := range ExpandPaths(a.paths, a.log) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := a.readFile(ctx, path, sink, result)
		var sinkErr *sinkError
		if errors.As(err, &sinkErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return result, err
		}
		if err != nil {
			a.log.Warn().Err(err).Str("file", path).Msg("skipping capture file")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		result.Files++
	}

	a.log.Info().
		Int("files", result.Files).
		Int("packets", result.Packets).
		Int("stored", result.Stored).
		Int("redundant", result.Redundant).
		Int("ignored", result.Ignored).
		Msg("captures read")
	return result, nil
}

type sinkError struct {
	err error
}

func (e *sinkError) Error() string { return "ingest: " + e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

func (a *PcapAdapter) readFile(ctx context.Context, path string, sink Sink, result *SyncResult) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := openReader(f)
	if err != nil {
		return err
	}

	log := a.log.With().Str("file", path).Str("link_type", r.LinkType().String()).Logger()
	log.Debug().Msg("reading capture")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, ci, err := r.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// a truncated capture keeps the packets read so far
			if errors.Is(err, io.ErrUnexpectedEOF) {
				log.Warn().Err(err).Msg("capture truncated")
				return nil
			}
			return fmt.Errorf("read packet: %w", err)
		}
		result.Packets++

		pkt := gopacket.NewPacket(data, r.LinkType(), gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		pkt.Metadata().CaptureInfo = ci

		if err := a.deliver(ctx, Decode(pkt, a.withHTTP), sink, result); err != nil {
			return &sinkError{err: err}
		}
	}
}

func (a *PcapAdapter) deliver(ctx context.Context, d Decoded, sink Sink, result *SyncResult) error {
	var (
		stored bool
		err    error
	)
	switch {
	case d.DHCP != nil:
		result.DHCP++
		stored, err = sink.IngestDHCP(ctx, d.DHCP)
	case d.IP != nil:
		result.IP++
		stored, err = sink.IngestIP(ctx, d.IP)
	default:
		result.Ignored++
		return nil
	}
	if err != nil {
		return err
	}

	if stored {
		result.Stored++
	} else {
		result.Redundant++
	}
	return nil
}

// openReader picks the pcapng or classic pcap reader by magic number
func openReader(r io.Reader) (packetReader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}

	if bytes.Equal(magic, pcapngMagic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("open pcapng: %w", err)
		}
		return ng, nil
	}

	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open pcap: %w", err)
	}
	return pr, nil
}
