package config_test

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lc/dnssift/internal/config"
)

type ConfigTestSuite struct {
	suite.Suite
	fs       mockFS
	provider config.Provider
}

type mockFS struct {
	files map[string]string
}

func (m mockFS) Stat(path string) (os.FileInfo, error) {
	if _, ok := m.files[path]; !ok {
		return nil, os.ErrNotExist
	}
	return nil, nil
}

func (m mockFS) MkdirAll(_ string, _ os.FileMode) error {
	return nil
}

func (m mockFS) Open(path string) (*os.File, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	tmp, err := os.CreateTemp("", "mock-*") // caller cleans up in t.Cleanup
	if err != nil {
		return nil, err
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, err
	}
	return tmp, nil
}

func (m mockFS) WriteFile(path string, content []byte, _ os.FileMode) error {
	m.files[path] = string(content)
	return nil
}

func (s *ConfigTestSuite) SetupTest() {
	s.fs = mockFS{
		files: make(map[string]string),
	}
	s.provider = config.NewWithPath(s.fs, "test/config.yaml")
}

func (s *ConfigTestSuite) TestLoadDefaultWhenNoFile() {
	// When loading configuration with no file present
	cfg, err := s.provider.Load()

	// Then default configuration should be returned
	s.Require().NoError(err)
	s.Equal(config.DefaultQueryDomain, cfg.Probe.Domain)
	s.Equal(config.DefaultTimeout, cfg.Probe.Timeout)
	s.Equal(config.DefaultWorkers, cfg.Probe.Workers)
}

func (s *ConfigTestSuite) TestLoadValidConfig() {
	// Given a valid config file
	s.fs.files["test/config.yaml"] = `
probe:
  domain: example.org
  timeout: 500ms
  workers: 25
`
	// When loading configuration
	cfg, err := s.provider.Load()

	// Then custom values should be loaded
	s.Require().NoError(err)
	s.Equal("example.org", cfg.Probe.Domain)
	s.Equal(500*time.Millisecond, cfg.Probe.Timeout)
	s.Equal(25, cfg.Probe.Workers)
}

func (s *ConfigTestSuite) TestPartialConfigKeepsDefaults() {
	// Given a config file that only overrides the worker count
	s.fs.files["test/config.yaml"] = `
probe:
  workers: 50
`
	cfg, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal(config.DefaultQueryDomain, cfg.Probe.Domain)
	s.Equal(config.DefaultTimeout, cfg.Probe.Timeout)
	s.Equal(50, cfg.Probe.Workers)
}

func (s *ConfigTestSuite) TestBadTimeoutSyntax() {
	s.fs.files["test/config.yaml"] = `
probe:
  timeout: not-a-duration
`
	_, err := s.provider.Load()
	s.Error(err)
	s.ErrorContains(err, "timeout")
}

func (s *ConfigTestSuite) TestValidation() {
	testCases := []struct {
		name        string
		config      config.Config
		expectedErr string
	}{
		{
			name: "empty query domain",
			config: config.Config{
				Probe: config.ProbeConfig{
					Domain:  "  ",
					Timeout: time.Second,
					Workers: 10,
				},
			},
			expectedErr: "query domain cannot be empty",
		},
		{
			name: "timeout too small",
			config: config.Config{
				Probe: config.ProbeConfig{
					Domain:  "google.com",
					Timeout: 10 * time.Millisecond,
					Workers: 10,
				},
			},
			expectedErr: "probe timeout must be at least 100ms",
		},
		{
			name: "non-positive workers",
			config: config.Config{
				Probe: config.ProbeConfig{
					Domain:  "google.com",
					Timeout: time.Second,
					Workers: -1,
				},
			},
			expectedErr: "worker count must be at least 1",
		},
		{
			name: "valid configuration",
			config: config.Config{
				Probe: config.ProbeConfig{
					Domain:  "google.com",
					Timeout: time.Second,
					Workers: 10,
				},
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.config.Validate()
			if tc.expectedErr == "" {
				s.NoError(err)
				return
			}
			s.Require().Error(err)
			s.ErrorContains(err, tc.expectedErr)
		})
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
