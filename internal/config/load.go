package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (e.g. RECORD_TRIALS=40).
const EnvPrefix = "RECORD"

// NewViper builds the viper instance shared by all configuration loaders.
//
// Defaults are registered first, then the optional file at path is read,
// then RECORD_* environment variables override both. An empty path skips
// the file.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()

	setSessionDefaults(v, DefaultSession())
	v.SetDefault("log_level", "info")
	v.SetDefault("firmware", string(FirmwareTTLMode))
	v.SetDefault("ttl_length", DefaultTTLLength)
	v.SetDefault("relay_length", DefaultRelayLength)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return v, nil
}

// Load reads a session configuration from the file at path (YAML, TOML or
// JSON) with environment overrides, and validates it.
func Load(path string) (Session, error) {
	v, err := NewViper(path)
	if err != nil {
		return Session{}, err
	}

	return SessionFromViper(v)
}

// SessionFromViper decodes and validates the session keys of v.
func SessionFromViper(v *viper.Viper) (Session, error) {
	var s Session
	if err := v.Unmarshal(&s); err != nil {
		return Session{}, fmt.Errorf("decode session config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Session{}, fmt.Errorf("validate session config: %w", err)
	}

	return s, nil
}

// OptionsFromViper decodes the driver keys of v into Options. Logger, Echo
// and Clock are left for the caller.
func OptionsFromViper(v *viper.Viper) Options {
	return Options{
		TTLLength:       ExplicitLength(v.GetDuration("ttl_length")),
		RelayLength:     ExplicitLength(v.GetDuration("relay_length")),
		ResponseTimeout: v.GetDuration("response_timeout"),
		Firmware:        NormalizeFirmware(v.GetString("firmware")),
	}
}

func setSessionDefaults(v *viper.Viper, s Session) {
	v.SetDefault("inter_trial_interval", s.InterTrial)
	v.SetDefault("decision_interval", s.Decision)
	v.SetDefault("feeding_interval", s.Feeding)
	v.SetDefault("post_trial_interval", s.PostTrial)
	v.SetDefault("sync_settle_interval", s.SyncSettle)
	v.SetDefault("response_timeout", s.ResponseTimeout)
	v.SetDefault("cue_response_timeout", s.CueResponseTimeout)
	v.SetDefault("trials", s.Trials)
	v.SetDefault("levels.values", s.Levels.Values)
	v.SetDefault("levels.probabilities", s.Levels.Probabilities)
	v.SetDefault("feeders.values", s.Feeders.Values)
	v.SetDefault("feeders.probabilities", s.Feeders.Probabilities)
	v.SetDefault("cost_intensities", s.CostIntensities)
	v.SetDefault("reward_concentrations", s.RewardConcentrations)
	v.SetDefault("reward_volume", s.RewardVolume)
	v.SetDefault("subject.id", s.Subject.ID)
	v.SetDefault("subject.health", s.Subject.Health)
	v.SetDefault("subject.weight", s.Subject.Weight)
	v.SetDefault("recording_type", s.RecordingType)
	v.SetDefault("task_type", s.TaskType)
	v.SetDefault("timezone", s.Timezone)
	v.SetDefault("output_root", s.OutputRoot)
	v.SetDefault("notes", s.Notes)
	v.SetDefault("query_sync_state", s.QuerySyncState)
}
