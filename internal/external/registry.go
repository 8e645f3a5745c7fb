package external

import (
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"

	"heaterwatch/internal/config"
)

// ClientRegistry holds the outbound clients used by a process.
type ClientRegistry struct {
	Email   EmailProvider
	SMS     SMSProvider
	Weather *BaseClient
}

// NewClientRegistry builds the clients for cfg. When cfg.UseStubs() is true
// email and SMS are replaced by logging stubs so a local run never reaches
// real recipients; the weather client is always real.
func NewClientRegistry(cfg *config.Config, awsCfg aws.Config, logger *slog.Logger) *ClientRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	weather := NewBaseClient(
		&http.Client{Timeout: cfg.Weather.Timeout},
		"openweather",
		RetryPolicy{
			MaxRetries: cfg.Weather.MaxRetries,
			MinWait:    DefaultRetryPolicy().MinWait,
			MaxWait:    DefaultRetryPolicy().MaxWait,
		},
		cfg.Weather.UserAgent,
	)

	if cfg.UseStubs() {
		logger.Info("initializing notification clients in STUB mode",
			"is_test_mode", cfg.IsTestMode,
			"environment", cfg.Environment,
		)
		stubLogger := logger.With("mode", "stub")
		return &ClientRegistry{
			Email:   NewStubEmailProvider(stubLogger),
			SMS:     NewStubSMSProvider(stubLogger),
			Weather: weather,
		}
	}

	logger.Info("initializing notification clients in PRODUCTION mode",
		"environment", cfg.Environment,
	)
	return &ClientRegistry{
		Email: NewSESClient(awsCfg, SESClientConfig{
			ConfigSetName: cfg.Email.ConfigSet,
			Logger:        logger.With("client", "ses"),
		}),
		SMS:     NewSNSClient(awsCfg, logger.With("client", "sns")),
		Weather: weather,
	}
}
