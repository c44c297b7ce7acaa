package execs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/execs"
)

func TestCommand_Environ(t *testing.T) {
	t.Parallel()

	cmd := execs.Command{
		Command: "fc-list",
		Env:     []string{"FONTCONFIG_FILE=/etc/fonts/test.conf", "EXTRA=1"},
	}

	got := cmd.Environ([]string{
		"PATH=/usr/bin",
		"SECRET=hunter2",
		"FONTCONFIG_FILE=/etc/fonts/fonts.conf",
		"malformed",
	})

	assert.Equal(t, []string{
		"EXTRA=1",
		"FONTCONFIG_FILE=/etc/fonts/test.conf",
		"PATH=/usr/bin",
	}, got)
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fc-list :lang=ja family", execs.Command{Command: "fc-list", Args: []string{":lang=ja", "family"}}.String())
	assert.Equal(t, "fc-match", execs.Command{Command: "fc-match"}.String())
}

func TestExecutor_Exec(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cmd       execs.Command
		extra     []string
		wantLines []string
		wantErr   error
	}{
		"success": {
			cmd:       execs.Command{Command: "echo", Args: []string{"Noto Sans"}},
			extra:     []string{"CJK"},
			wantLines: []string{"Noto Sans CJK"},
		},
		"empty command": {
			cmd:     execs.Command{},
			wantErr: execs.ErrEmptyCommand,
		},
		"failure": {
			cmd:     execs.Command{Command: "false"},
			wantErr: execs.ErrCommandExecution,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := execs.NewExecutor(tc.cmd, []string{"PATH=/usr/bin:/bin"}).Exec(context.Background(), tc.extra...)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantLines, res.Lines())
		})
	}
}
