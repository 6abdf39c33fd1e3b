package sources

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
)

// runCommand executes an external tool and returns its stdout. Swappable
// in tests so the parsers can be exercised on canned output.
type runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Classic discovers classic (BR/EDR) Bluetooth devices through a BlueZ
// inquiry. Classic inquiries are slow and the tooling only exists on
// Linux, so the source reports itself unavailable anywhere hcitool is
// missing instead of failing the whole scan.
type Classic struct {
	run      runCommand
	lookPath func(string) (string, error)
}

// NewClassic creates a classic inquiry source backed by hcitool.
func NewClassic() *Classic {
	return &Classic{run: execCommand, lookPath: exec.LookPath}
}

func (c *Classic) ID() string { return SourceClassic }

// Observe runs a flushed inquiry. hcitool decides its own inquiry length,
// so the context carries the duration as an upper bound rather than a
// target.
func (c *Classic) Observe(ctx context.Context, req scan.ScanRequest) ([]scan.RawObservation, error) {
	if _, err := c.lookPath("hcitool"); err != nil {
		return nil, scan.NewUnavailableError(SourceClassic, "hcitool not found in PATH")
	}

	ctx, cancel := context.WithTimeout(ctx, req.Duration)
	defer cancel()

	start := time.Now()
	output, err := c.run(ctx, "hcitool", "scan", "--flush")
	if err != nil {
		// A killed inquiry still reports the devices it settled before
		// the deadline.
		if ctx.Err() == nil || len(output) == 0 {
			return nil, scan.NewSourceError(SourceClassic, err)
		}
	}

	observations := parseInquiry(string(output))
	logging.Debug("Classic inquiry finished",
		zap.Int("devices", len(observations)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return observations, nil
}

// parseInquiry extracts devices from hcitool scan output:
//
//	Scanning ...
//	        AA:BB:CC:DD:EE:FF       My Phone
//	        11:22:33:44:55:66       n/a
func parseInquiry(output string) []scan.RawObservation {
	var observations []scan.RawObservation
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || !looksLikeAddress(fields[0]) {
			continue
		}

		name := strings.Join(fields[1:], " ")
		if name == "n/a" {
			name = ""
		}

		observations = append(observations, scan.RawObservation{
			SourceID:    SourceClassic,
			RawAddress:  fields[0],
			DisplayName: name,
			Attributes: map[string]scan.AttrValue{
				scan.AttrConnectable: scan.BoolAttr(true),
			},
		})
	}
	return observations
}

// looksLikeAddress reports whether a token has the colon-separated MAC
// shape hcitool prints. Full validation happens during identity
// resolution.
func looksLikeAddress(token string) bool {
	return len(token) == 17 && strings.Count(token, ":") == 5
}
