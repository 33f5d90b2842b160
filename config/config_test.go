package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jonwraymond/healthgate/config"
	"github.com/jonwraymond/healthgate/health"
)

var _ = Describe("Config", func() {
	var tempDir string

	writeConfig := func(content string) string {
		path := filepath.Join(tempDir, "healthgate.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "healthgate-config-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
		os.Unsetenv("HEALTHGATE_POLICY_STARTUP_WINDOW_SECONDS")
		os.Unsetenv("HEALTHGATE_DEPENDENCY_PORT")
		os.Unsetenv("HEALTHGATE_TEST_DASHBOARD_HOST")
	})

	Describe("Load", func() {
		Context("without a config file", func() {
			BeforeEach(func() {
				Expect(os.Chdir(tempDir)).To(Succeed())
			})

			It("should fall back to defaults", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Address).To(Equal(":8080"))
				Expect(cfg.Server.FallbackAddress).To(Equal(":5601"))
				Expect(cfg.Server.ShutdownTimeout).To(Equal(5 * time.Second))
				Expect(cfg.Dependency.Port).To(Equal(5601))
				Expect(cfg.Dependency.URL).To(Equal("http://localhost:5601/"))
				Expect(cfg.Dependency.ListenTimeout).To(Equal(health.DefaultListenTimeout))
				Expect(cfg.Dependency.HTTPTimeout).To(Equal(health.DefaultHTTPTimeout))
				Expect(cfg.Presence).To(BeEmpty())
				Expect(cfg.Probes.Parallel).To(BeTrue())
				Expect(cfg.Host.PID).To(Equal(1))
			})

			It("should produce the default resolution policy", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ResolutionPolicy()).To(Equal(health.DefaultPolicy()))
			})

			It("should apply environment overrides", func() {
				os.Setenv("HEALTHGATE_POLICY_STARTUP_WINDOW_SECONDS", "600")
				os.Setenv("HEALTHGATE_DEPENDENCY_PORT", "9200")

				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Policy.StartupWindowSeconds).To(Equal(600))
				Expect(cfg.Dependency.Port).To(Equal(9200))
			})
		})

		Context("with a valid config file", func() {
			var path string

			BeforeEach(func() {
				os.Setenv("HEALTHGATE_TEST_DASHBOARD_HOST", "dashboard.local")
				path = writeConfig(`
server:
  address: ":9090"
  fallback_address: ""

dependency:
  port: 5602
  url: "https://${HEALTHGATE_TEST_DASHBOARD_HOST}:5602/api/status"
  http_timeout: "3s"

presence:
  - name: "manager"
    pattern: "^/var/ossec/bin/wazuh-.*$$"
  - name: "indexer"
    pattern: "opensearch"
    timeout: "1s"

policy:
  startup_window_seconds: 600
  readiness_overrides_startup: false
  acceptable_http_codes: [200, 401]

probes:
  parallel: false

logging:
  level: "debug"
`)
			})

			It("should load the file", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Address).To(Equal(":9090"))
				Expect(cfg.Server.FallbackAddress).To(BeEmpty())
				Expect(cfg.Dependency.Port).To(Equal(5602))
				Expect(cfg.Dependency.HTTPTimeout).To(Equal(3 * time.Second))
				Expect(cfg.Probes.Parallel).To(BeFalse())
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
			})

			It("should expand environment variables in probe targets", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Dependency.URL).To(Equal("https://dashboard.local:5602/api/status"))
				Expect(cfg.Presence[0].Pattern).To(Equal("^/var/ossec/bin/wazuh-.*$"))
			})

			It("should default presence timeouts", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Presence).To(HaveLen(2))
				Expect(cfg.Presence[0].Timeout).To(Equal(health.DefaultPresenceTimeout))
				Expect(cfg.Presence[1].Timeout).To(Equal(time.Second))
			})

			It("should map the policy", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())

				policy := cfg.ResolutionPolicy()
				Expect(policy.StartupWindowSeconds).To(Equal(600))
				Expect(policy.ReadinessOverridesStartup).To(BeFalse())
				Expect(policy.DegradedPortOpenPasses).To(BeTrue())
				Expect(policy.AcceptableHTTPCodes).To(Equal([]int{200, 401}))
			})

			It("should build the probe set in declaration order", func() {
				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				cfg.Host.ProcRoot = tempDir

				probes, err := cfg.ProbeSet()
				Expect(err).NotTo(HaveOccurred())
				Expect(probes.Names()).To(Equal([]string{
					"dashboard_listening", "dashboard_http", "manager", "indexer",
				}))
			})
		})

		Context("with an explicit path that does not exist", func() {
			It("should return an error", func() {
				_, err := config.Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with an unset variable in a probe target", func() {
			It("should name the missing variable", func() {
				path := writeConfig(`
dependency:
  url: "http://${HEALTHGATE_TEST_UNSET_HOST}:5601/"
`)
				_, err := config.Load(path)
				Expect(err).To(MatchError(ContainSubstring("HEALTHGATE_TEST_UNSET_HOST")))
			})
		})

		DescribeTable("invalid configurations",
			func(content, fragment string) {
				_, err := config.Load(writeConfig(content))
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(fragment))
			},
			Entry("port out of range", "dependency:\n  port: 70000\n", "port"),
			Entry("bad server address", "server:\n  address: \"nonsense\"\n", "address"),
			Entry("relative url", "dependency:\n  url: \"not a url\"\n", "url"),
			Entry("zero startup window", "policy:\n  startup_window_seconds: 0\n", "startup_window_seconds"),
			Entry("status code out of range", "policy:\n  acceptable_http_codes: [200, 999]\n", "acceptable_http_codes"),
			Entry("unknown log level", "logging:\n  level: \"verbose\"\n", "level"),
			Entry("unknown tracing exporter", "telemetry:\n  tracing:\n    exporter: \"zipkin\"\n", "exporter"),
			Entry("sample pct above one", "telemetry:\n  tracing:\n    sample_pct: 1.5\n", "sample_pct"),
			Entry("invalid presence pattern", "presence:\n  - name: \"x\"\n    pattern: \"(\"\n", "pattern"),
			Entry("duplicate probe name", "presence:\n  - name: \"dashboard_http\"\n    pattern: \"kibana\"\n", "dashboard_http"),
		)
	})

	Describe("Observe", func() {
		It("should always enable logging", func() {
			cfg := &config.Config{Logging: config.LoggingConfig{Level: config.LogLevelWarn}}
			obs := cfg.Observe()
			Expect(obs.Logging.Enabled).To(BeTrue())
			Expect(obs.Logging.Level).To(Equal(config.LogLevelWarn))
		})
	})

	Describe("ServesPrometheus", func() {
		It("should require an enabled prometheus exporter with an address", func() {
			cfg := &config.Config{}
			cfg.Telemetry.Metrics = config.MetricsConfig{Enabled: true, Exporter: "prometheus", Address: ":9464"}
			Expect(cfg.ServesPrometheus()).To(BeTrue())

			cfg.Telemetry.Metrics.Address = ""
			Expect(cfg.ServesPrometheus()).To(BeFalse())

			cfg.Telemetry.Metrics = config.MetricsConfig{Enabled: true, Exporter: "otlp", Address: ":9464"}
			Expect(cfg.ServesPrometheus()).To(BeFalse())
		})
	})
})

var _ = Describe("ExpandEnvStrict", func() {
	AfterEach(func() {
		os.Unsetenv("HEALTHGATE_TEST_EXPAND")
	})

	It("should expand set variables", func() {
		os.Setenv("HEALTHGATE_TEST_EXPAND", "kibana")
		out, err := config.ExpandEnvStrict("${HEALTHGATE_TEST_EXPAND}:5601")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("kibana:5601"))
	})

	It("should keep escaped dollars literal", func() {
		out, err := config.ExpandEnvStrict("^wazuh-.*$$")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("^wazuh-.*$"))
	})

	It("should leave strings without variables unchanged", func() {
		out, err := config.ExpandEnvStrict("http://localhost:5601/")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("http://localhost:5601/"))
	})

	DescribeTable("should keep unbraced dollars literal",
		func(in string) {
			os.Setenv("HEALTHGATE_TEST_EXPAND", "kibana")
			out, err := config.ExpandEnvStrict(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(in))
		},
		Entry("optional anchor", "indexer$?"),
		Entry("trailing anchor", "^wazuh-.*$"),
		Entry("shell style variable", "$HOME/bin"),
		Entry("unbraced set variable", "$HEALTHGATE_TEST_EXPAND"),
		Entry("positional", "$1"),
	)

	It("should expand braced variables next to regex anchors", func() {
		os.Setenv("HEALTHGATE_TEST_EXPAND", "wazuh-indexer")
		out, err := config.ExpandEnvStrict("^${HEALTHGATE_TEST_EXPAND}$?$$")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("^wazuh-indexer$?$"))
	})

	It("should not expand a variable after an escaped dollar", func() {
		os.Setenv("HEALTHGATE_TEST_EXPAND", "kibana")
		out, err := config.ExpandEnvStrict("$${HEALTHGATE_TEST_EXPAND}")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("${HEALTHGATE_TEST_EXPAND}"))
	})

	It("should list every missing variable", func() {
		_, err := config.ExpandEnvStrict("${HEALTHGATE_TEST_B}${HEALTHGATE_TEST_A}${HEALTHGATE_TEST_B}")
		Expect(err).To(MatchError("missing required environment variables: HEALTHGATE_TEST_A, HEALTHGATE_TEST_B"))
	})
})
