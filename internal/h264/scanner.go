package h264

import (
	"bufio"
	"io"
)

// NALScanner splits an Annex-B byte stream into NAL payload blobs
// delimited by start codes (0x000001, optionally preceded by extra
// leading zero bytes). It is modeled on bufio.Scanner: call Scan in a
// loop, then Bytes for the current payload.
type NALScanner struct {
	r       *bufio.Reader
	cur     []byte
	err     error
	started bool
}

// NewNALScanner wraps r for NAL-delimited scanning.
func NewNALScanner(r io.Reader) *NALScanner {
	return &NALScanner{r: bufio.NewReaderSize(r, 64*1024)}
}

// Scan advances to the next NAL payload, returning false at EOF or on
// error (check Err).
func (s *NALScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.started {
		// Discard everything up to and including the first start code.
		if _, err := s.takeUntilStart(); err != nil {
			s.err = err
			return false
		}
		s.started = true
	}
	payload, err := s.takeUntilStart()
	if err != nil && err != io.EOF {
		s.err = err
		return false
	}
	if err == io.EOF && len(payload) == 0 {
		s.err = io.EOF
		return false
	}
	s.cur = payload
	if err == io.EOF {
		// Final payload; next Scan call reports EOF.
		s.err = io.EOF
		return true
	}
	return true
}

// Bytes returns the payload found by the most recent Scan call.
func (s *NALScanner) Bytes() []byte { return s.cur }

// Err returns the first non-EOF error encountered, if any.
func (s *NALScanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// takeUntilStart reads bytes until it has consumed a start code,
// returning everything read before that start code (exclusive). A
// run of zero bytes shorter than a valid start code is preserved
// verbatim in the returned payload. On EOF mid-stream, any buffered
// zero run is flushed into the returned payload.
func (s *NALScanner) takeUntilStart() ([]byte, error) {
	var out []byte
	zerosFound := 0
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if len(out) > 0 || zerosFound > 0 {
				for i := 0; i < zerosFound; i++ {
					out = append(out, 0x00)
				}
				return out, io.EOF
			}
			return nil, err
		}
		switch {
		case b == 0x00:
			zerosFound++
		case b == 0x01:
			if zerosFound >= 2 {
				// Leading zeros beyond what the start-code prefix
				// itself absorbs belong to the payload that precedes
				// this start code.
				extra := zerosFound - 3
				for i := 0; i < extra; i++ {
					out = append(out, 0x00)
				}
				return out, nil
			}
			for i := 0; i < zerosFound; i++ {
				out = append(out, 0x00)
			}
			out = append(out, b)
			zerosFound = 0
		default:
			for i := 0; i < zerosFound; i++ {
				out = append(out, 0x00)
			}
			out = append(out, b)
			zerosFound = 0
		}
	}
}
