package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"hybridd/internal/common/fsutil"
	"hybridd/pkg/types"
)

// termGrace is how long a runtime process gets after SIGTERM before it is
// force-killed.
const termGrace = 2 * time.Second

// SubprocessRunner invokes the local model runtime as a child process and
// reads its streamed output. The runtime contract: the process writes
// line-delimited JSON fragments {"response": "...", "done": bool} to stdout
// (plain text lines are accepted verbatim); fragments are concatenated in
// emission order.
type SubprocessRunner struct {
	bin       string
	modelsDir string
	log       zerolog.Logger
}

// NewSubprocessRunner builds a runner for the given runtime binary. Local
// profiles without an explicit path resolve to <modelsDir>/<name>.gguf.
func NewSubprocessRunner(bin, modelsDir string, log zerolog.Logger) *SubprocessRunner {
	return &SubprocessRunner{
		bin:       bin,
		modelsDir: modelsDir,
		log:       log.With().Str("component", "subprocess_runner").Logger(),
	}
}

// runtimeFragment is one stdout line from the runtime.
type runtimeFragment struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

func (r *SubprocessRunner) Run(ctx context.Context, model types.ModelProfile, req Request) (Result, error) {
	if strings.TrimSpace(r.bin) == "" {
		return Result{}, fmt.Errorf("local runtime binary not configured")
	}
	modelPath, err := r.resolveModelPath(model)
	if err != nil {
		return Result{}, err
	}

	args := []string{"--model", modelPath, "--prompt", req.Prompt}
	if req.Params.MaxTokens > 0 {
		args = append(args, "--n-predict", strconv.Itoa(req.Params.MaxTokens))
	}
	if req.Params.Temperature > 0 {
		args = append(args, "--temp", strconv.FormatFloat(req.Params.Temperature, 'g', -1, 64))
	}
	if req.Params.TopP > 0 {
		args = append(args, "--top-p", strconv.FormatFloat(req.Params.TopP, 'g', -1, 64))
	}
	if req.Params.TopK > 0 {
		args = append(args, "--top-k", strconv.Itoa(req.Params.TopK))
	}
	if req.Params.Seed != 0 {
		args = append(args, "--seed", strconv.FormatInt(req.Params.Seed, 10))
	}

	cmd := exec.CommandContext(ctx, r.bin, args...)
	// Graceful stop on deadline: SIGTERM first, hard kill after the grace.
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = termGrace
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, err
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start local runtime: %w", err)
	}
	r.log.Debug().Str("model", model.Name).Int("pid", cmd.Process.Pid).Msg("runtime started")

	var out strings.Builder
	var usage types.Usage
	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "{") {
			var frag runtimeFragment
			if e := json.Unmarshal([]byte(line), &frag); e == nil {
				out.WriteString(frag.Response)
				if frag.PromptEvalCount > 0 {
					usage.PromptTokens = frag.PromptEvalCount
				}
				if frag.EvalCount > 0 {
					usage.CompletionTokens = frag.EvalCount
				}
				continue
			}
		}
		// Plain-text runtime: keep the line as-is.
		out.WriteString(line)
		out.WriteByte('\n')
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if waitErr != nil {
		return Result{}, fmt.Errorf("local runtime exited: %v; stderr tail: %s", waitErr, stderrTail(&stderr))
	}
	if scanErr := sc.Err(); scanErr != nil {
		return Result{}, fmt.Errorf("read runtime output: %w", scanErr)
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return Result{Content: out.String(), Usage: usage, FinishReason: "stop"}, nil
}

func (r *SubprocessRunner) resolveModelPath(model types.ModelProfile) (string, error) {
	path := model.Path
	if path == "" {
		dir, err := fsutil.ExpandHome(r.modelsDir)
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, model.Name+".gguf")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return "", err
	}
	// Catch a missing artifact here instead of surfacing the runtime's own
	// load failure.
	if !fsutil.PathExists(path) {
		return "", fmt.Errorf("model artifact not found: %s", path)
	}
	return path, nil
}

func stderrTail(b *bytes.Buffer) string {
	s := b.String()
	if len(s) > 4096 {
		s = s[len(s)-4096:]
	}
	return strings.TrimSpace(s)
}
