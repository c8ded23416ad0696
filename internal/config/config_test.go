/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.ConfigVersion != 1 {
		t.Fatalf("unexpected config version %d", cfg.ConfigVersion)
	}
	if cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry must default to opt-out")
	}
	if cfg.History.MaxDepth <= 0 {
		t.Fatalf("history depth default must be positive, got %d", cfg.History.MaxDepth)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestMergeInto(t *testing.T) {
	dst := Defaults()
	src := AppConfig{
		General: GeneralConfig{TelemetryOptIn: true, Theme: "dark"},
		History: HistoryConfig{MaxDepth: 25},
		Logging: LoggingConfig{Level: "DEBUG", File: " app.log "},
	}
	mergeInto(&dst, &src)
	if !dst.General.TelemetryOptIn || dst.General.Theme != "dark" {
		t.Fatalf("general not merged: %+v", dst.General)
	}
	if dst.History.MaxDepth != 25 {
		t.Fatalf("history depth not merged: %d", dst.History.MaxDepth)
	}
	if dst.Logging.Level != "debug" {
		t.Fatalf("logging level not normalized: %q", dst.Logging.Level)
	}
	if dst.Logging.File != "app.log" {
		t.Fatalf("logging file not trimmed: %q", dst.Logging.File)
	}
	// empty fields keep defaults
	if dst.Logging.Format != "console" {
		t.Fatalf("empty format overwrote default: %q", dst.Logging.Format)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvHistoryMaxDepth, "7")
	t.Setenv(EnvTelemetryOptIn, "yes")
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Logging.Level != "error" {
		t.Fatalf("log level override failed: %q", cfg.Logging.Level)
	}
	if cfg.History.MaxDepth != 7 {
		t.Fatalf("history depth override failed: %d", cfg.History.MaxDepth)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry override failed")
	}
}

func TestEnvOverrideForReportsSource(t *testing.T) {
	t.Setenv(EnvLogFormat, "json")
	if env, ok := EnvOverrideFor("logging.format"); !ok || env != EnvLogFormat {
		t.Fatalf("expected %s override, got %q ok=%v", EnvLogFormat, env, ok)
	}
	if _, ok := EnvOverrideFor("logging.level"); ok {
		t.Fatalf("unset env reported as override")
	}
	if _, ok := EnvOverrideFor("not.a.key"); ok {
		t.Fatalf("unknown key reported as override")
	}
}

func TestBadEnvDepthIgnored(t *testing.T) {
	t.Setenv(EnvHistoryMaxDepth, "-3")
	cfg := Defaults()
	want := cfg.History.MaxDepth
	applyEnvOverrides(&cfg)
	if cfg.History.MaxDepth != want {
		t.Fatalf("negative depth should be ignored, got %d", cfg.History.MaxDepth)
	}
}
