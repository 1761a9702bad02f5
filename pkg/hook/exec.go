package hook

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/mxpv/kickstarter/pkg/model"
)

// Exec is an external command fired on campaign lifecycle events
type Exec struct {
	Command []string `toml:"command"`
	Timeout int      `toml:"timeout"` // Timeout in seconds, 0 means model.DefaultHookTimeout
}

// Invoke runs the command with env appended to the process environment
func (h *Exec) Invoke(ctx context.Context, env []string) error {
	if h == nil {
		return nil
	}

	if len(h.Command) == 0 {
		return errors.New("hook command is empty")
	}

	timeout := model.DefaultHookTimeout
	if h.Timeout > 0 {
		timeout = time.Duration(h.Timeout) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if len(h.Command) == 1 {
		// Single string, let the shell parse it
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", h.Command[0])
	} else {
		cmd = exec.CommandContext(ctx, h.Command[0], h.Command[1:]...)
	}

	cmd.Env = append(os.Environ(), env...)

	data, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "hook execution failed, output: %s", string(data))
	}

	return nil
}

// CampaignEnv describes the campaign to hook commands
func CampaignEnv(campaign *model.Campaign, status *model.CampaignStatus) []string {
	env := []string{
		"CAMPAIGN_NAME=" + campaign.Name,
		"CAMPAIGN_CREATOR=" + campaign.Creator,
		"CAMPAIGN_END_TIME=" + strconv.FormatInt(campaign.EndTime.Unix(), 10),
		"CAMPAIGN_GOAL=" + strconv.FormatUint(campaign.Goal, 10),
		"CAMPAIGN_STATUS=" + string(campaign.Status),
	}

	if status != nil {
		env = append(env,
			"CAMPAIGN_TOTAL_PLEDGED="+strconv.FormatUint(status.TotalPledged, 10),
			"CAMPAIGN_CONTRIBUTORS="+strconv.Itoa(status.Contributors),
			"CAMPAIGN_GOAL_REACHED="+strconv.FormatBool(status.TotalPledged >= campaign.Goal),
		)
	}

	return env
}
