package brand

import (
	"os"
	"testing"
)

func TestGet(t *testing.T) {
	b := Get()
	if b.Name == "" {
		t.Error("Brand name should not be empty")
	}
	if Name == "" {
		t.Error("Global Name should be initialized")
	}
	if BinaryName != LowerName {
		t.Errorf("Expected binary name %q to match lower name %q", BinaryName, LowerName)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent("1.0.0")
	if ua != Name+"/1.0.0" {
		t.Errorf("Unexpected UserAgent: %s", ua)
	}

	uaDefault := UserAgent("")
	if uaDefault != Name+"/dev" {
		t.Errorf("Unexpected default UserAgent: %s", uaDefault)
	}
}

func TestGetDirectories(t *testing.T) {
	cleanEnv := func() {
		os.Unsetenv(ConfigEnvPrefix + "_PREFIX")
		os.Unsetenv(ConfigEnvPrefix + "_CONFIG_DIR")
		os.Unsetenv(ConfigEnvPrefix + "_STATE_DIR")
	}
	cleanEnv()
	defer cleanEnv()

	if GetConfigDir() != DefaultConfigDir {
		t.Errorf("Expected default config dir %s, got %s", DefaultConfigDir, GetConfigDir())
	}
	if GetStateDir() != DefaultStateDir {
		t.Errorf("Expected default state dir %s, got %s", DefaultStateDir, GetStateDir())
	}

	os.Setenv(ConfigEnvPrefix+"_PREFIX", "/tmp/sincelast")
	if GetConfigDir() != "/tmp/sincelast/config" {
		t.Errorf("Expected prefix config dir, got %s", GetConfigDir())
	}
	if GetStateDir() != "/tmp/sincelast/state" {
		t.Errorf("Expected prefix state dir, got %s", GetStateDir())
	}

	// Direct override wins over prefix
	os.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "/custom/config")
	if GetConfigDir() != "/custom/config" {
		t.Errorf("Expected custom config dir, got %s", GetConfigDir())
	}
}
