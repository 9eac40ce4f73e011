package mail

import (
	"fmt"
	"os"
	"time"

	"github.com/tech-arch1tect/stepup/config"
	"gopkg.in/yaml.v3"
)

// ChainFile declares an ordered transport list, tried first to last.
// It overrides the env-derived chain when configured, which keeps
// provider credentials out of the environment on shared hosts.
type ChainFile struct {
	Transports []TransportSpec `yaml:"transports"`
}

type TransportSpec struct {
	Type    string        `yaml:"type"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`

	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Encryption string `yaml:"encryption"`
}

func LoadChainFile(path string) (*ChainFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transport chain file: %w", err)
	}

	var chain ChainFile
	if err := yaml.Unmarshal(data, &chain); err != nil {
		return nil, fmt.Errorf("failed to parse transport chain file: %w", err)
	}
	if len(chain.Transports) == 0 {
		return nil, fmt.Errorf("transport chain file declares no transports")
	}
	return &chain, nil
}

// BuildChain assembles the transport list from config: the YAML chain
// file when set, otherwise relay-then-SMTP from the environment.
func BuildChain(cfg *config.MailConfig) ([]Transport, error) {
	if cfg.ChainFile != "" {
		chain, err := LoadChainFile(cfg.ChainFile)
		if err != nil {
			return nil, err
		}
		return buildFromSpecs(chain.Transports, cfg)
	}

	var transports []Transport
	if cfg.RelayURL != "" {
		transports = append(transports,
			NewRelayTransport(cfg.RelayURL, cfg.FromAddress, cfg.FromName, cfg.RelayTimeout))
	}
	if cfg.SMTP.Host != "" {
		smtp, err := NewSMTPTransport(SMTPOptions{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			Encryption: cfg.SMTP.Encryption,
		}, cfg.FromAddress, cfg.FromName)
		if err != nil {
			return nil, err
		}
		transports = append(transports, smtp)
	}

	if len(transports) == 0 {
		return nil, fmt.Errorf("no mail transports configured")
	}
	return transports, nil
}

func buildFromSpecs(specs []TransportSpec, cfg *config.MailConfig) ([]Transport, error) {
	transports := make([]Transport, 0, len(specs))
	for _, spec := range specs {
		switch spec.Type {
		case "relay":
			if spec.URL == "" {
				return nil, fmt.Errorf("relay transport requires a url")
			}
			transports = append(transports,
				NewRelayTransport(spec.URL, cfg.FromAddress, cfg.FromName, spec.Timeout))
		case "smtp":
			smtp, err := NewSMTPTransport(SMTPOptions{
				Host:       spec.Host,
				Port:       spec.Port,
				Username:   spec.Username,
				Password:   spec.Password,
				Encryption: spec.Encryption,
			}, cfg.FromAddress, cfg.FromName)
			if err != nil {
				return nil, err
			}
			transports = append(transports, smtp)
		default:
			return nil, fmt.Errorf("unknown transport type: %s", spec.Type)
		}
	}
	return transports, nil
}
