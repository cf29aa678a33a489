package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CommandEnv names the analyzer binary when Settings.Command is empty.
const CommandEnv = "RUSTDOC_TWOSLASH_ANALYZER"

// maxFrameSize bounds a single response line; annotation batches for
// large programs can run long.
const maxFrameSize = 4 << 20

// Settings configure a subprocess analyzer.
type Settings struct {
	// Command is the analyzer binary. Empty means take it from the
	// RUSTDOC_TWOSLASH_ANALYZER environment variable.
	Command string
	Args    []string
	// Manifest is the dependency manifest text handed to the analyzer
	// at startup. Empty means no external dependency context.
	Manifest string
	// ScratchDir is where the analyzer may cache build artifacts.
	ScratchDir string
	Logger     *slog.Logger
}

// Subprocess runs the analyzer as a long-lived child process and talks
// newline-delimited JSON over its stdio: one request object per line on
// stdin, one response object per line on stdout, correlated by ID.
// The process is spawned lazily on the first Analyze call.
type Subprocess struct {
	settings Settings
	logger   *slog.Logger

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Scanner
	started bool
	dead    bool
}

type helloFrame struct {
	Manifest   string `json:"manifest,omitempty"`
	ScratchDir string `json:"scratch_dir,omitempty"`
}

type analyzeRequest struct {
	ID      string `json:"id"`
	Program string `json:"program"`
}

type analyzeResponse struct {
	ID          string          `json:"id"`
	Annotations []RawAnnotation `json:"annotations"`
	Error       string          `json:"error,omitempty"`
}

// NewSubprocess validates the settings and returns an unstarted
// adapter. The analyzer process itself is spawned on first use.
func NewSubprocess(settings Settings) (*Subprocess, error) {
	if settings.Command == "" {
		settings.Command = os.Getenv(CommandEnv)
	}
	if settings.Command == "" {
		return nil, &Error{
			Kind:    KindConfig,
			Message: fmt.Sprintf("no analyzer command configured (set %s)", CommandEnv),
		}
	}
	logger := settings.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Subprocess{settings: settings, logger: logger}, nil
}

// Analyze sends the program to the analyzer and returns its hover
// annotations. Callers serialize; Subprocess performs no locking of
// its own.
func (p *Subprocess) Analyze(ctx context.Context, program string) ([]RawAnnotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.dead {
		return nil, &Error{Kind: KindSpawn, Message: "analyzer process is not running"}
	}
	if !p.started {
		if err := p.start(); err != nil {
			p.dead = true
			return nil, err
		}
	}

	req := analyzeRequest{ID: uuid.NewString(), Program: program}
	frame, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindProtocol, Message: "encode analyze request", Cause: err}
	}
	frame = append(frame, '\n')
	if _, err := p.stdin.Write(frame); err != nil {
		p.fail()
		return nil, &Error{Kind: KindSpawn, Message: "write to analyzer", Cause: err}
	}

	if !p.stdout.Scan() {
		p.fail()
		err := p.stdout.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, &Error{Kind: KindSpawn, Message: "read from analyzer", Cause: err}
	}

	var resp analyzeResponse
	if err := json.Unmarshal(p.stdout.Bytes(), &resp); err != nil {
		p.fail()
		return nil, &Error{Kind: KindProtocol, Message: "decode analyzer response", Cause: err}
	}
	if resp.ID != req.ID {
		p.fail()
		return nil, &Error{
			Kind:    KindProtocol,
			Message: fmt.Sprintf("response id %q does not match request id %q", resp.ID, req.ID),
		}
	}
	if resp.Error != "" {
		// The program did not analyze; the process itself is fine.
		return nil, &Error{Kind: KindAnalysis, Message: resp.Error}
	}
	return resp.Annotations, nil
}

// start spawns the analyzer and sends the startup frame.
func (p *Subprocess) start() error {
	cmd := exec.Command(p.settings.Command, p.settings.Args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &Error{Kind: KindSpawn, Message: "open analyzer stdin", Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &Error{Kind: KindSpawn, Message: "open analyzer stdout", Cause: err}
	}
	if err := cmd.Start(); err != nil {
		return &Error{Kind: KindSpawn, Message: "start analyzer", Cause: err}
	}

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = bufio.NewScanner(stdout)
	p.stdout.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	p.started = true
	p.logger.Info("analyzer started", "command", p.settings.Command)

	if p.settings.Manifest != "" || p.settings.ScratchDir != "" {
		hello := helloFrame{Manifest: p.settings.Manifest, ScratchDir: p.settings.ScratchDir}
		frame, err := json.Marshal(hello)
		if err != nil {
			return &Error{Kind: KindProtocol, Message: "encode startup frame", Cause: err}
		}
		frame = append(frame, '\n')
		if _, err := p.stdin.Write(frame); err != nil {
			p.fail()
			return &Error{Kind: KindSpawn, Message: "send startup frame", Cause: err}
		}
	}
	return nil
}

// fail marks the process unusable and reaps it.
func (p *Subprocess) fail() {
	p.dead = true
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
}

// Close shuts the analyzer down by closing its stdin and waiting for
// exit.
func (p *Subprocess) Close() error {
	if !p.started || p.dead {
		return nil
	}
	p.dead = true
	_ = p.stdin.Close()
	return p.cmd.Wait()
}
