// Package socket implements the reliable point-to-point transport
// (TCP, framed, typed payloads) and the best-effort multicast
// datagram transport the election and replication protocols run over.
package socket

import (
	"bufio"
	"encoding/json"
)

// MulticastBufferSize bounds a single multicast datagram; senders must
// respect it, matching the wire contract in spec.md §6.
const MulticastBufferSize = 1024

// encode serialises v as a single line of JSON, the module's
// self-describing textual wire form.
func encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}

// decode parses a single JSON value of type T from payload.
func decode[T any](payload []byte) (T, error) {
	var v T
	err := json.Unmarshal(payload, &v)
	return v, err
}

// readLine reads one newline-delimited frame from r.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	return line, nil
}
