package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/archivepull/archive-pull/internal/model"
	"github.com/archivepull/archive-pull/internal/progress"
)

// Scanner buffer sizing for subprocess output
const (
	lineBufferInitial = 64 * 1024
	lineBufferMax     = 1024 * 1024
)

// runStage spawns one subprocess stage and supervises it to termination.
// Both output channels are drained promptly, line by line, into the
// tracker so the child's buffers never fill; onLine additionally observes
// every line when set. The returned outcome distinguishes clean exit,
// non-zero exit, spawn failure, and cancellation.
func runStage(ctx context.Context, binary string, args []string, tracker *progress.Tracker, onLine func(string)) model.StageOutcome {
	cmd := exec.CommandContext(ctx, binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return model.StageSpawnFailure(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return model.StageSpawnFailure(err)
	}

	if err := cmd.Start(); err != nil {
		return model.StageSpawnFailure(err)
	}

	var wg sync.WaitGroup
	for _, pipe := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			drainLines(r, tracker, onLine)
		}(pipe)
	}

	wg.Wait()
	err = cmd.Wait()

	if ctx.Err() == context.Canceled {
		return model.StageCancelled()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return model.StageExitFailure(exitErr.ExitCode())
		}
		return model.StageSpawnFailure(err)
	}
	return model.StageSuccess()
}

// drainLines feeds fully-buffered lines into the tracker. State mutation
// happens per complete line, never on partial bytes.
func drainLines(r io.Reader, tracker *progress.Tracker, onLine func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, lineBufferInitial), lineBufferMax)
	scanner.Split(scanProgressLines)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		tracker.Ingest(line)
		if onLine != nil {
			onLine(line)
		}
	}
}

// scanProgressLines splits on \n or bare \r. Both tools rewrite their
// progress displays with carriage returns, so a newline-only split would
// sit on one giant pseudo-line until the stage ends.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if idx := bytes.IndexAny(data, "\r\n"); idx >= 0 {
		// Treat \r\n as one terminator
		advance = idx + 1
		if data[idx] == '\r' && advance < len(data) && data[advance] == '\n' {
			advance++
		}
		return advance, data[:idx], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
