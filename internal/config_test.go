package internal_test

import (
	"time"

	"github.com/frahmantamala/goal-tracker/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "*",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		Database: internal.DatabaseConfig{
			Source:       "postgres://localhost/goals",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Security: internal.SecurityConfig{
			JWTSecret:           "0123456789abcdef0123456789abcdef",
			AccessTokenDuration: 15 * time.Minute,
		},
		Logging: internal.LoggingConfig{Level: "info", Format: "json"},
		Worker:  internal.WorkerConfig{Interval: time.Hour, MaxWorkers: 4, QueueSize: 100},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	DescribeTable("rejects",
		func(mutate func(*internal.Config), message string) {
			cfg := validConfig()
			mutate(cfg)
			Expect(cfg.Validate()).To(MatchError(ContainSubstring(message)))
		},
		Entry("an out of range port", func(c *internal.Config) { c.Server.Port = 70000 }, "invalid port 70000"),
		Entry("a read timeout below the header timeout", func(c *internal.Config) { c.Server.ReadTimeout = time.Second }, "read_timeout"),
		Entry("a missing database source", func(c *internal.Config) { c.Database.Source = "" }, "source is required"),
		Entry("more idle than open connections", func(c *internal.Config) { c.Database.MaxIdleConns = 20 }, "max_idle_conns"),
		Entry("a short jwt secret", func(c *internal.Config) { c.Security.JWTSecret = "short" }, "jwt_secret"),
		Entry("a sub-minute token lifetime", func(c *internal.Config) { c.Security.AccessTokenDuration = time.Second }, "access_token_duration"),
		Entry("an unknown log level", func(c *internal.Config) { c.Logging.Level = "trace" }, `unknown level "trace"`),
		Entry("an unknown log format", func(c *internal.Config) { c.Logging.Format = "xml" }, `unknown format "xml"`),
		Entry("a zero sweep interval", func(c *internal.Config) { c.Worker.Interval = 0 }, "interval must be positive"),
		Entry("no sweep workers", func(c *internal.Config) { c.Worker.MaxWorkers = 0 }, "max_workers"),
	)

	It("reports every failing section at once", func() {
		cfg := validConfig()
		cfg.Database.Source = ""
		cfg.Logging.Level = "loud"

		err := cfg.Validate()
		Expect(err).To(MatchError(ContainSubstring("database config")))
		Expect(err).To(MatchError(ContainSubstring("logging config")))
	})

	Describe("LoadConfigFromEnv", func() {
		It("reads overrides from the environment", func() {
			GinkgoT().Setenv("HTTP_PORT", "9090")
			GinkgoT().Setenv("DB_SOURCE", "postgres://db/goals")
			GinkgoT().Setenv("WORKER_INTERVAL", "15m")
			GinkgoT().Setenv("WORKER_MAX_WORKERS", "not-a-number")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Database.Source).To(Equal("postgres://db/goals"))
			Expect(cfg.Worker.Interval).To(Equal(15 * time.Minute))
			Expect(cfg.Worker.MaxWorkers).To(Equal(4))
			Expect(cfg.Logging.Format).To(Equal("json"))
		})
	})
})
