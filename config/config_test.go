package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	t.Run("should fall back to defaults without a config file", func(t *testing.T) {
		cfg, err := Load(viper.New())
		if err != nil {
			t.Fatal(err)
		}

		if cfg.AppPort != "8080" {
			t.Errorf("got `%s`, want `%s` for AppPort", cfg.AppPort, "8080")
		}
		if cfg.DraftTTL != 30*time.Minute {
			t.Errorf("got `%v`, want `%v` for DraftTTL", cfg.DraftTTL, 30*time.Minute)
		}
		if cfg.APITimeout != 10*time.Second {
			t.Errorf("got `%v`, want `%v` for APITimeout", cfg.APITimeout, 10*time.Second)
		}
		if cfg.RedisSessionDB != 1 {
			t.Errorf("got `%d`, want `%d` for RedisSessionDB", cfg.RedisSessionDB, 1)
		}
	})

	t.Run("should let the environment override defaults", func(t *testing.T) {
		t.Setenv("PMOVE_API_URL", "http://api.test:3000")
		t.Setenv("DRAFT_TTL", "5m")

		cfg, err := Load(viper.New())
		if err != nil {
			t.Fatal(err)
		}

		if cfg.APIURL != "http://api.test:3000" {
			t.Errorf("got `%s`, want `%s` for APIURL", cfg.APIURL, "http://api.test:3000")
		}
		if cfg.DraftTTL != 5*time.Minute {
			t.Errorf("got `%v`, want `%v` for DraftTTL", cfg.DraftTTL, 5*time.Minute)
		}
	})
}
