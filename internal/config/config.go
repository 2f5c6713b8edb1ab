package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host      string    `koanf:"host"`
	Frontend  Frontend  `koanf:"frontend"`
	Database  Database  `koanf:"db"`
	Scheduler Scheduler `koanf:"scheduler"`
	Smtp      Smtp      `koanf:"smtp"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Scheduler configures the reminder dispatch job. IntervalMinutes only bounds
// delivery latency; WindowHours is how far ahead of an event's call time a
// reminder is sent.
type Scheduler struct {
	Enabled         bool `koanf:"enabled"`
	IntervalMinutes int  `koanf:"intervalminutes"`
	WindowHours     int  `koanf:"windowhours"`
}

func (s Scheduler) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

func (s Scheduler) Window() time.Duration {
	return time.Duration(s.WindowHours) * time.Hour
}

type Smtp struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	From string `koanf:"from"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Frontend: Frontend{
			Enabled: true,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "callboard",
			Pass:   "",
			Name:   "callboard",
			Schema: "callboard",
		},
		Scheduler: Scheduler{
			Enabled:         true,
			IntervalMinutes: 15,
			WindowHours:     24,
		},
		Smtp: Smtp{
			Host: "localhost",
			Port: 587,
			From: "no-reply@callboard.local",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "CALLBOARD_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "CALLBOARD_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
