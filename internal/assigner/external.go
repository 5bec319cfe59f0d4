package assigner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/slavakukuyev/elevator-fleet/internal/domain"
)

// wireState mirrors the cost-function helper's expected per-elevator
// JSON shape: {"behaviour": "idle"|"moving"|"doorOpen", "floor": int,
// "direction": "up"|"down"|"stop", "cabRequests": [bool...]}.
type wireState struct {
	Behaviour   string `json:"behaviour"`
	Floor       int    `json:"floor"`
	Direction   string `json:"direction"`
	CabRequests []bool `json:"cabRequests"`
}

type wireHallCall [2]bool // [up, down]

type wireRequest struct {
	HallRequests []wireHallCall       `json:"hallRequests"`
	States       map[string]wireState `json:"states"`
}

// External shells out to a cost-minimising helper binary matching the
// well-known hall-request-assigner protocol: invoked with a single
// --input flag carrying a JSON argument, it prints a JSON object
// mapping each elevator name to its [[up,down]...] assignment vector
// on stdout.
type External struct {
	BinaryPath string
	Timeout    time.Duration
}

// NewExternal returns an External assigner that invokes binaryPath.
func NewExternal(binaryPath string, timeout time.Duration) *External {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &External{BinaryPath: binaryPath, Timeout: timeout}
}

// Assign implements Assigner by invoking the external binary.
func (e *External) Assign(hallCalls []HallCall, elevators []ElevatorInput) (map[string][]Assignment, error) {
	req := wireRequest{
		HallRequests: make([]wireHallCall, len(hallCalls)),
		States:       make(map[string]wireState, len(elevators)),
	}
	for i, c := range hallCalls {
		req.HallRequests[i] = wireHallCall{c.Up, c.Down}
	}
	for _, el := range elevators {
		if !el.Behaviour.IsOperational() {
			continue // OutOfOrder cars are not offered to the helper
		}
		req.States[el.Owner] = wireState{
			Behaviour:   string(el.Behaviour),
			Floor:       el.Floor,
			Direction:   string(el.Direction),
			CabRequests: []bool(el.CabRequests),
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, domain.NewInternalError("marshal assigner request", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.BinaryPath, "--input", string(payload))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, domain.NewExternalError(
			fmt.Sprintf("assigner helper failed: %s", stderr.String()), err)
	}

	var raw map[string][]wireHallCall
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, domain.NewExternalError("parse assigner helper output", err)
	}

	out := make(map[string][]Assignment, len(raw))
	for name, pairs := range raw {
		assignments := make([]Assignment, len(pairs))
		for i, p := range pairs {
			assignments[i] = Assignment{Up: p[0], Down: p[1]}
		}
		out[name] = assignments
	}
	return out, nil
}
