package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestBindFlagsRejectsUnknownFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("known", "", "")

	err := bindFlags(cmd, map[string]string{"some.key": "misnamed"})
	if err == nil {
		t.Fatalf("bindFlags with unknown flag = nil, want error")
	}
	if !strings.Contains(err.Error(), "misnamed") {
		t.Fatalf("error %q does not name the missing flag", err)
	}
}

func TestBindFlagsBindsKnownFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("known", "", "")

	if err := bindFlags(cmd, map[string]string{"test.known": "known"}); err != nil {
		t.Fatalf("bindFlags() = %v, want nil", err)
	}
}
