package gcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// Info is the part of `gcloud info --format=json` the tests check.
type Info struct {
	Config struct {
		Account string `json:"account"`
		Project string `json:"project"`
	} `json:"config"`
}

// Installed reports whether gcloud is on PATH.
func Installed() bool {
	_, err := exec.LookPath("gcloud")
	return err == nil
}

// GetInfo runs gcloud info.
func GetInfo(ctx context.Context) (*Info, error) {
	output, err := exec.CommandContext(ctx, "gcloud", "info", "--format=json").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run gcloud info: %w", err)
	}

	var info Info
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse gcloud info: %w", err)
	}
	return &info, nil
}
