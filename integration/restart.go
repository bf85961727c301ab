//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

// restartServer runs a shell command that bounces the server under test,
// e.g. "docker compose restart minipos" or a systemctl call.
func restartServer(t *testing.T, ctx context.Context, command string) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("restart %q failed: %v\n%s", command, err, string(out))
	}
}
