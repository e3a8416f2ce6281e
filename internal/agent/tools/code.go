package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/frankie-agent/server/pkg/logger"
)

const pythonExecTimeout = 30 * time.Second

// ExecutePythonInput is the argument shape for the sandboxed-execution connector.
type ExecutePythonInput struct {
	Code string `json:"code"`
}

func createExecutePythonTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolExecutePython,
			Desc: "Executes a Python snippet and returns its stdout and stderr. Use print() to emit results.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"code": {
					Type:     "string",
					Desc:     "The Python code to execute.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *ExecutePythonInput) (string, error) {
			if strings.TrimSpace(in.Code) == "" {
				return "", fmt.Errorf("code is required")
			}

			execCtx, cancel := context.WithTimeout(ctx, pythonExecTimeout)
			defer cancel()

			cmd := exec.CommandContext(execCtx, "python3", "-c", in.Code)
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			runErr := cmd.Run()

			var md strings.Builder
			md.WriteString("# Python Code Execution Results\n\n")
			if execCtx.Err() == context.DeadlineExceeded {
				md.WriteString(fmt.Sprintf("**Status:** timed out after %s\n\n", pythonExecTimeout))
			} else if runErr != nil {
				md.WriteString(fmt.Sprintf("**Status:** failed (%v)\n\n", runErr))
			} else {
				md.WriteString("**Status:** success\n\n")
			}
			if out := strings.TrimSpace(stdout.String()); out != "" {
				md.WriteString("**Output:**\n\n```\n" + out + "\n```\n\n")
			}
			if errOut := strings.TrimSpace(stderr.String()); errOut != "" {
				md.WriteString("**Errors:**\n\n```\n" + errOut + "\n```\n")
			}
			logx.Debug().Str("tool", ToolExecutePython).Bool("failed", runErr != nil).Msg("python execution completed")
			return md.String(), nil
		},
	)
}
