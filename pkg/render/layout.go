package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Layout runs the Graphviz binary on a written .gv file and returns the path
// of the produced image, which sits next to gvPath with format as extension.
func Layout(ctx context.Context, binary, format, gvPath string) (string, error) {
	if binary == "" {
		binary = "dot"
	}
	out := strings.TrimSuffix(gvPath, ".gv") + "." + format

	cmd := exec.CommandContext(ctx, binary, "-T"+format, "-o", out, gvPath)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	slog.Debug("running layout", "binary", binary, "format", format, "input", gvPath)
	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("layout %s with %s", gvPath, binary)
		if firstLine := strings.SplitN(strings.TrimSpace(stderrBuf.String()), "\n", 2)[0]; firstLine != "" {
			msg += ": " + firstLine
		}
		return "", fmt.Errorf("%s: %w", msg, err)
	}
	return out, nil
}
