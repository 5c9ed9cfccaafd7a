package settingsstore

import (
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entities"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ReconcileConfig is the effective schedule of the inventory reconciliation.
type ReconcileConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// ReconcileConfigInfo includes source information for each field.
type ReconcileConfigInfo struct {
	Enabled        bool   `json:"enabled"`
	EnabledSource  string `json:"enabledSource"`
	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"scheduleSource"`
}

// ReconcileStatus describes the last scheduled run.
type ReconcileStatus struct {
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	Status    string     `json:"status,omitempty"` // "success", "failed", ""
	Message   string     `json:"message,omitempty"`
}

func (s *SettingsStore) GetReconcileEnabled() bool {
	if value, ok := s.lookup(entities.SettingKeyReconcileEnabled); ok {
		return parseBool(value, s.defaults.Enabled)
	}
	return s.defaults.Enabled
}

func (s *SettingsStore) SetReconcileEnabled(enabled bool) error {
	return s.repo.SetSetting(entities.SettingKeyReconcileEnabled, strconv.FormatBool(enabled))
}

// GetReconcileSchedule returns the cron schedule, falling back to
// config.DefaultReconcileSchedule when nothing is configured.
func (s *SettingsStore) GetReconcileSchedule() string {
	if value, ok := s.lookup(entities.SettingKeyReconcileSchedule); ok {
		return value
	}
	if s.defaults.Schedule != "" {
		return s.defaults.Schedule
	}
	return config.DefaultReconcileSchedule
}

// SetReconcileSchedule validates and saves a cron schedule.
func (s *SettingsStore) SetReconcileSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return err
	}
	return s.repo.SetSetting(entities.SettingKeyReconcileSchedule, schedule)
}

func (s *SettingsStore) GetReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		Enabled:  s.GetReconcileEnabled(),
		Schedule: s.GetReconcileSchedule(),
	}
}

func (s *SettingsStore) GetReconcileConfigInfo() ReconcileConfigInfo {
	info := ReconcileConfigInfo{
		Enabled:        s.GetReconcileEnabled(),
		EnabledSource:  SourceConfig,
		Schedule:       s.GetReconcileSchedule(),
		ScheduleSource: SourceConfig,
	}
	if _, ok := s.lookup(entities.SettingKeyReconcileEnabled); ok {
		info.EnabledSource = SourceDatabase
	}
	if _, ok := s.lookup(entities.SettingKeyReconcileSchedule); ok {
		info.ScheduleSource = SourceDatabase
	}
	return info
}

func (s *SettingsStore) GetReconcileStatus() ReconcileStatus {
	values, err := s.repo.GetSettings(
		entities.SettingKeyReconcileLastAt,
		entities.SettingKeyReconcileLastStatus,
		entities.SettingKeyReconcileLastMessage,
	)
	if err != nil {
		return ReconcileStatus{}
	}

	status := ReconcileStatus{
		Status:  values[entities.SettingKeyReconcileLastStatus],
		Message: values[entities.SettingKeyReconcileLastMessage],
	}
	if ts, err := time.Parse(time.RFC3339, values[entities.SettingKeyReconcileLastAt]); err == nil {
		status.LastRunAt = &ts
	}
	return status
}

func (s *SettingsStore) SetReconcileStatus(status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyReconcileLastAt:      time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyReconcileLastStatus:  status,
		entities.SettingKeyReconcileLastMessage: message,
	})
}

// ClearReconcileSettings drops the database overrides, reverting to config.
func (s *SettingsStore) ClearReconcileSettings() error {
	return s.clear(entities.SettingKeyReconcileEnabled, entities.SettingKeyReconcileSchedule)
}

// ValidateCronSchedule validates a five-field cron schedule.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule.
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case config.DefaultReconcileSchedule:
		return "Daily at 03:00"
	case "0 3 * * 0":
		return "Weekly on Sunday at 03:00"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the schedule fires next.
func GetNextRunTime(schedule string) (*time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
