package apdu

import "fmt"

// CHUNKING:
// A logical payload longer than the per-frame data limit is cut into ordered
// chunks of at most that limit. Each chunk knows its position only through
// IsFirst/IsLast, which the frame builder turns into P1 markers:
//
//	P1 = First (chunk 0) or Subsequent (chunk > 0), OR LastMask on the final chunk.
//
// A single-chunk payload is simultaneously first and last. An empty payload
// still produces exactly one (empty) chunk.

// Chunk is one slice of a logical payload.
type Chunk struct {
	Index   int
	Data    []byte
	IsFirst bool
	IsLast  bool
}

// Split cuts payload into chunks of at most limit bytes.
// Chunk data aliases payload; payload is never modified.
func Split(payload []byte, limit int) ([]Chunk, error) {
	if limit < 1 {
		return nil, fmt.Errorf("invalid chunk limit %d", limit)
	}

	count := (len(payload) + limit - 1) / limit
	if count == 0 {
		count = 1
	}

	chunks := make([]Chunk, 0, count)
	for i := 0; i < count; i++ {
		start := i * limit
		end := min(start+limit, len(payload))
		chunks = append(chunks, Chunk{
			Index:   i,
			Data:    payload[start:end],
			IsFirst: i == 0,
			IsLast:  i == count-1,
		})
	}

	return chunks, nil
}

// ChunkMarkers holds the P1 values announcing a chunk's position.
type ChunkMarkers struct {
	First      byte
	Subsequent byte
	LastMask   byte
}

// P1 computes the parameter byte for a chunk.
func (m ChunkMarkers) P1(c Chunk) byte {
	p1 := m.Subsequent
	if c.IsFirst {
		p1 = m.First
	}
	if c.IsLast {
		p1 |= m.LastMask
	}
	return p1
}

// BuildChunkedFrames splits payload and builds one frame per chunk.
// CLA, INS and P2 are copied from header for every chunk; P1 comes from markers.
func BuildChunkedFrames(header Frame, payload []byte, limit int, markers ChunkMarkers) ([]*Frame, error) {
	chunks, err := Split(payload, limit)
	if err != nil {
		return nil, err
	}

	frames := make([]*Frame, 0, len(chunks))
	for _, c := range chunks {
		frames = append(frames, NewFrame(header.Class, header.Instruction, markers.P1(c), header.P2, c.Data))
	}
	return frames, nil
}
