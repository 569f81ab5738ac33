package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileConfig_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
name = "web"
base_dir = "/srv/warden"
tick_interval = "2s"

[[process]]
name = "api"
group = "web"
command = "./api --port 8080"
env = ["PORT=8080"]
stop_signal = "INT"
stop_timeout = "5s"

[[process]]
name = "cron"
command = "./cron"
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.Name != "web" || fc.BaseDir != "/srv/warden" || fc.TickInterval != "2s" {
		t.Errorf("top-level = %+v", fc)
	}
	if len(fc.Processes) != 2 {
		t.Fatalf("got %d processes, want 2", len(fc.Processes))
	}
	if fc.Processes[0].Group != "web" || fc.Processes[0].Env[0] != "PORT=8080" {
		t.Errorf("process[0] = %+v", fc.Processes[0])
	}
	if fc.Processes[1].Group != "" {
		t.Errorf("process[1] group = %q, want default", fc.Processes[1].Group)
	}
}

func TestLoadFileConfig_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
name: web
kill_wait: 3s
processes:
  - name: api
    group: web
    command: ./api
    flap_count: 3
    flap_window: 30s
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.Name != "web" || fc.KillWait != "3s" {
		t.Errorf("top-level = %+v", fc)
	}
	if len(fc.Processes) != 1 || fc.Processes[0].FlapCount != 3 {
		t.Errorf("processes = %+v", fc.Processes)
	}
}

func TestLoadFileConfig_RejectsUnknownKeys(t *testing.T) {
	for name, content := range map[string]string{
		"config.toml": "name = \"web\"\nbogus = 1\n",
		"config.yml":  "name: web\nbogus: 1\n",
	} {
		if _, err := LoadFileConfig(writeFile(t, name, content)); err == nil {
			t.Errorf("%s: expected error for unknown key", name)
		}
	}
}

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Name:         "web",
				BaseDir:      "/srv",
				TickInterval: "500ms",
				KillWait:     "2s",
			},
			changed: map[string]bool{},
			expected: Config{
				Name:         "web",
				BaseDir:      "/srv",
				TickInterval: 500 * time.Millisecond,
				KillWait:     2 * time.Second,
				Processes:    []ProcessConfig{},
			},
		},
		{
			name:       "respects changed flags",
			fileConfig: FileConfig{Name: "file", BaseDir: "/file"},
			changed:    map[string]bool{"name": true},
			initial:    Config{Name: "flag"},
			expected:   Config{Name: "flag", BaseDir: "/file", Processes: []ProcessConfig{}},
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{TickInterval: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name: "invalid process duration",
			fileConfig: FileConfig{Processes: []FileProcess{
				{Name: "api", Command: "true", StopTimeout: "later"},
			}},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.Name != tt.expected.Name || cfg.BaseDir != tt.expected.BaseDir ||
				cfg.TickInterval != tt.expected.TickInterval || cfg.KillWait != tt.expected.KillWait {
				t.Errorf("got %+v, want %+v", cfg, tt.expected)
			}
			if len(cfg.Processes) != len(tt.expected.Processes) {
				t.Errorf("processes = %+v, want %+v", cfg.Processes, tt.expected.Processes)
			}
		})
	}
}

func TestApplyFileConfig_Processes(t *testing.T) {
	cfg := DefaultConfig()
	err := ApplyFileConfig(&cfg, FileConfig{Processes: []FileProcess{
		{Name: "api", Group: "web", Command: "./api", StopTimeout: "3s", FlapWindow: "1m", FlapCount: 4},
	}}, map[string]bool{})
	if err != nil {
		t.Fatalf("ApplyFileConfig() error = %v", err)
	}
	want := ProcessConfig{Name: "api", Group: "web", Command: "./api", StopTimeout: 3 * time.Second, FlapWindow: time.Minute, FlapCount: 4}
	if len(cfg.Processes) != 1 || cfg.Processes[0].Name != want.Name ||
		cfg.Processes[0].StopTimeout != want.StopTimeout || cfg.Processes[0].FlapWindow != want.FlapWindow ||
		cfg.Processes[0].FlapCount != want.FlapCount {
		t.Errorf("processes = %+v, want %+v", cfg.Processes, want)
	}
}

func TestFileExists(t *testing.T) {
	path := writeFile(t, "x.toml", "")
	if !FileExists(path) {
		t.Error("FileExists() = false for existing file")
	}
	if FileExists(path + ".missing") {
		t.Error("FileExists() = true for missing file")
	}
}
