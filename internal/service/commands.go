package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/metrics"
	"thermostat_hub/internal/models"
	"thermostat_hub/internal/sdm"
)

// MaxFanTimerSeconds is the longest fan timer the remote API accepts (12h).
const MaxFanTimerSeconds = 43200

type CommandService struct {
	exec CommandExecutor
	demo bool
	log  *logger.Logger
}

func NewCommandService(exec CommandExecutor, demo bool, log *logger.Logger) *CommandService {
	return &CommandService{exec: exec, demo: demo, log: log}
}

var _ Commands = (*CommandService)(nil)

func (s *CommandService) SetHeat(ctx context.Context, deviceID string, heatCelsius float64) models.CommandResult {
	return s.run(ctx, deviceID, sdm.Command{
		Name:   sdm.CommandSetHeat,
		Params: map[string]any{"heatCelsius": heatCelsius},
	})
}

func (s *CommandService) SetCool(ctx context.Context, deviceID string, coolCelsius float64) models.CommandResult {
	return s.run(ctx, deviceID, sdm.Command{
		Name:   sdm.CommandSetCool,
		Params: map[string]any{"coolCelsius": coolCelsius},
	})
}

// SetRange rejects heat above cool before calling out.
func (s *CommandService) SetRange(ctx context.Context, deviceID string, heatCelsius, coolCelsius float64) models.CommandResult {
	if heatCelsius > coolCelsius {
		return rejected(sdm.CommandSetRange, fmt.Sprintf("heatCelsius %.2f is above coolCelsius %.2f", heatCelsius, coolCelsius))
	}
	return s.run(ctx, deviceID, sdm.Command{
		Name:   sdm.CommandSetRange,
		Params: map[string]any{"heatCelsius": heatCelsius, "coolCelsius": coolCelsius},
	})
}

func (s *CommandService) SetTempMode(ctx context.Context, deviceID string, mode models.TempMode) models.CommandResult {
	if !mode.Valid() {
		return rejected(sdm.CommandSetMode, fmt.Sprintf("unknown mode %q", mode))
	}
	return s.run(ctx, deviceID, sdm.Command{
		Name:   sdm.CommandSetMode,
		Params: map[string]any{"mode": string(mode)},
	})
}

func (s *CommandService) SetEcoMode(ctx context.Context, deviceID string, mode models.EcoMode) models.CommandResult {
	if !mode.Valid() {
		return rejected(sdm.CommandSetEcoMode, fmt.Sprintf("unknown eco mode %q", mode))
	}
	return s.run(ctx, deviceID, sdm.Command{
		Name:   sdm.CommandSetEcoMode,
		Params: map[string]any{"mode": string(mode)},
	})
}

// SetFanTimer sends the duration as "<n>s" only when one is given.
func (s *CommandService) SetFanTimer(ctx context.Context, deviceID string, mode models.FanTimerMode, durationSeconds int) models.CommandResult {
	if !mode.Valid() {
		return rejected(sdm.CommandSetFanTimer, fmt.Sprintf("unknown timer mode %q", mode))
	}
	if durationSeconds < 0 || durationSeconds > MaxFanTimerSeconds {
		return rejected(sdm.CommandSetFanTimer, fmt.Sprintf("durationSeconds must be between 0 (no duration) and %d", MaxFanTimerSeconds))
	}
	params := map[string]any{"timerMode": string(mode)}
	if durationSeconds > 0 {
		params["duration"] = fmt.Sprintf("%ds", durationSeconds)
	}
	return s.run(ctx, deviceID, sdm.Command{Name: sdm.CommandSetFanTimer, Params: params})
}

func (s *CommandService) run(ctx context.Context, deviceID string, cmd sdm.Command) models.CommandResult {
	label := commandLabel(cmd.Name)
	if strings.TrimSpace(deviceID) == "" {
		return rejected(cmd.Name, "deviceID is required")
	}
	if s.demo {
		metrics.CommandsTotal.WithLabelValues(label, "ok").Inc()
		return models.CommandResult{Success: true}
	}

	if err := s.exec.ExecuteCommand(ctx, deviceID, cmd); err != nil {
		metrics.CommandsTotal.WithLabelValues(label, "error").Inc()
		if s.log != nil {
			s.log.Errorw("command_failed", "command", label, "device_id", deviceID, "err", err)
		}
		return failed(err)
	}
	metrics.CommandsTotal.WithLabelValues(label, "ok").Inc()
	return models.CommandResult{Success: true}
}

func rejected(command, msg string) models.CommandResult {
	metrics.CommandsTotal.WithLabelValues(commandLabel(command), "rejected").Inc()
	return models.CommandResult{HTTPCode: http.StatusBadRequest, Error: msg}
}

func failed(err error) models.CommandResult {
	var (
		cmdErr  *sdm.CommandError
		authErr *sdm.AuthError
	)
	switch {
	case errors.As(err, &cmdErr):
		return models.CommandResult{HTTPCode: cmdErr.HTTPCode, Error: cmdErr.Error()}
	case errors.As(err, &authErr):
		return models.CommandResult{HTTPCode: authErr.HTTPCode, Error: authErr.Error()}
	}
	return models.CommandResult{Error: err.Error()}
}

// commandLabel keeps metric labels short: "ThermostatMode.SetMode".
func commandLabel(name string) string {
	return strings.TrimPrefix(name, "sdm.devices.commands.")
}
