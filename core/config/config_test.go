package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/core/config"
)

func setenv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetenv(key string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Unsetenv(key)).To(Succeed())
	DeferCleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		}
	})
}

var _ = Describe("Load", func() {
	BeforeEach(func() {
		setenv("COMPANION_ENV", "test")
		for _, key := range []string{
			"LLM_API_KEY", "OPENAI_API_KEY", "LLM_PROVIDER", "REDIS_URL", "DATABASE_URL",
			"COMPANION_TOOLS_ENABLED", "COMPANION_SESSION_IDLE_TIMEOUT", "CORS_ALLOWED_ORIGINS",
			"TAVILY_API_KEY", "TYPESENSE_URL", "TYPESENSE_API_KEY",
		} {
			unsetenv(key)
		}
	})

	It("requires an LLM key for the server", func() {
		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError(ContainSubstring("LLM_API_KEY")))
	})

	It("falls back to OPENAI_API_KEY", func() {
		setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := config.Load(config.ServiceTypeCLI)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LLM.APIKey).To(Equal("sk-test"))
		Expect(cfg.LLM.Enabled()).To(BeTrue())
	})

	It("applies companion defaults", func() {
		setenv("LLM_API_KEY", "sk-test")

		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LLM.Model).To(Equal("gpt-3.5-turbo"))
		Expect(cfg.Companion.ToolsEnabled).To(BeTrue())
		Expect(cfg.Companion.KnowledgeResults).To(Equal(3))
		Expect(cfg.Companion.SessionIdleTimeout).To(Equal(30 * time.Minute))
		Expect(cfg.Knowledge.Collection).To(Equal("mental_health_knowledge"))
		Expect(cfg.Search.Enabled()).To(BeFalse())
		Expect(cfg.Knowledge.Enabled()).To(BeFalse())
		Expect(cfg.Redis.Enabled()).To(BeFalse())
		Expect(cfg.DB.Enabled()).To(BeFalse())
		Expect(cfg.CORSOrigins).To(ConsistOf("http://localhost:3000"))
	})

	It("parses booleans, durations and lists", func() {
		setenv("LLM_API_KEY", "sk-test")
		setenv("COMPANION_TOOLS_ENABLED", "false")
		setenv("COMPANION_SESSION_IDLE_TIMEOUT", "5m")
		setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Companion.ToolsEnabled).To(BeFalse())
		Expect(cfg.Companion.SessionIdleTimeout).To(Equal(5 * time.Minute))
		Expect(cfg.CORSOrigins).To(Equal([]string{"https://a.example", "https://b.example"}))
	})

	It("keeps defaults when values do not parse", func() {
		setenv("LLM_API_KEY", "sk-test")
		setenv("COMPANION_TOOLS_ENABLED", "sometimes")
		setenv("COMPANION_SESSION_IDLE_TIMEOUT", "soon")

		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Companion.ToolsEnabled).To(BeTrue())
		Expect(cfg.Companion.SessionIdleTimeout).To(Equal(30 * time.Minute))
	})

	It("rejects an unknown provider", func() {
		setenv("LLM_API_KEY", "sk-test")
		setenv("LLM_PROVIDER", "mystery")

		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(HaveOccurred())
	})

	It("requires redis and postgres for the worker but not an LLM key", func() {
		_, err := config.Load(config.ServiceTypeWorker)
		Expect(err).To(MatchError(ContainSubstring("REDIS_URL")))

		setenv("REDIS_URL", "redis://localhost:6379/0")
		_, err = config.Load(config.ServiceTypeWorker)
		Expect(err).To(MatchError(ContainSubstring("DATABASE_URL")))

		setenv("DATABASE_URL", "postgres://localhost/companion")
		cfg, err := config.Load(config.ServiceTypeWorker)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Redis.Consumer).To(Equal("worker"))
	})
})
