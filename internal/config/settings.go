package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/baaaaaaaka/chat_explorer/internal/view"
)

const CurrentVersion = 1

const (
	DefaultGapMinutes = 30
	DefaultLogLevel   = "info"
)

type Settings struct {
	Version    int     `yaml:"version"`
	GapMinutes float64 `yaml:"gap_minutes"`
	PageSize   int     `yaml:"page_size"`
	Sort       string  `yaml:"sort"`
	View       string  `yaml:"view"`
	LogLevel   string  `yaml:"log_level"`
}

func Defaults() Settings {
	return Settings{
		Version:    CurrentVersion,
		GapMinutes: DefaultGapMinutes,
		PageSize:   view.DefaultPageSize,
		Sort:       string(view.SortDateDesc),
		View:       view.SegmentView.String(),
		LogLevel:   DefaultLogLevel,
	}
}

// fill replaces zero values with defaults so partial files stay usable.
func (s *Settings) fill() {
	d := Defaults()
	if s.Version == 0 {
		s.Version = d.Version
	}
	if s.PageSize == 0 {
		s.PageSize = d.PageSize
	}
	if strings.TrimSpace(s.Sort) == "" {
		s.Sort = d.Sort
	}
	if strings.TrimSpace(s.View) == "" {
		s.View = d.View
	}
	if strings.TrimSpace(s.LogLevel) == "" {
		s.LogLevel = d.LogLevel
	}
}

func (s Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version %d (expected %d)", s.Version, CurrentVersion)
	}
	if s.GapMinutes < 0 || math.IsNaN(s.GapMinutes) || math.IsInf(s.GapMinutes, 0) {
		return fmt.Errorf("gap_minutes must be a non-negative number, got %v", s.GapMinutes)
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", s.PageSize)
	}
	if _, err := view.ParseSortKey(s.Sort); err != nil {
		return err
	}
	if _, err := view.ParseMode(s.View); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", s.LogLevel, err)
	}
	return nil
}

// ApplyEnv overlays CHAT_EXPLORER_* variables. Values that fail to parse are
// ignored.
func (s Settings) ApplyEnv() Settings {
	s.GapMinutes = envFloat("CHAT_EXPLORER_GAP_MINUTES", s.GapMinutes)
	s.PageSize = envInt("CHAT_EXPLORER_PAGE_SIZE", s.PageSize)
	s.Sort = envStr("CHAT_EXPLORER_SORT", s.Sort)
	s.View = envStr("CHAT_EXPLORER_VIEW", s.View)
	s.LogLevel = envStr("CHAT_EXPLORER_LOG_LEVEL", s.LogLevel)
	return s
}

func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return fallback
}
