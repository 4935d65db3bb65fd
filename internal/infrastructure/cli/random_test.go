package cli

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRandomCmds(t *testing.T) {
	tests := []struct {
		args  []string
		check func(string) bool
	}{
		{[]string{"random", "string"}, func(s string) bool { return len(s) == 32 }},
		{[]string{"random", "string", "7"}, func(s string) bool { return len(s) == 7 }},
		{[]string{"random", "bytes", "4"}, func(s string) bool { return len(s) == 8 }},
		{[]string{"random", "h160"}, func(s string) bool { return strings.HasPrefix(s, "0x") && len(s) == 42 }},
		{[]string{"random", "h256"}, func(s string) bool { return strings.HasPrefix(s, "0x") && len(s) == 66 }},
		{[]string{"random", "u256"}, func(s string) bool {
			n, ok := new(big.Int).SetString(s, 10)
			return ok && n.Sign() >= 0 && n.BitLen() <= 256
		}},
		{[]string{"random", "uint"}, func(s string) bool { return s != "" }},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], "_"), func(t *testing.T) {
			out := strings.TrimSpace(mustRun(t, tt.args...))
			if !tt.check(out) {
				t.Errorf("unexpected output %q", out)
			}
		})
	}
}

func TestRandomTmpPath(t *testing.T) {
	out := strings.TrimSpace(mustRun(t, "random", "tmp-path", "12", "--suffix", ".json"))
	if filepath.Dir(out) != filepath.Clean(os.TempDir()) {
		t.Errorf("expected path under temp dir, got %q", out)
	}
	if !strings.HasSuffix(out, ".json") || len(filepath.Base(out)) != 12+len(".json") {
		t.Errorf("unexpected name %q", filepath.Base(out))
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("tmp-path must not create the file")
	}
}

func TestRandomInvalidLength(t *testing.T) {
	if _, err := runCLI(t, "random", "string", "abc"); err == nil {
		t.Error("expected error for non-numeric length")
	}
	if _, err := runCLI(t, "random", "bytes", "-3"); err == nil {
		t.Error("expected error for negative length")
	}
}
